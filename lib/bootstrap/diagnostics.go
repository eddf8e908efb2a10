package bootstrap

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// PrintDiagnostics writes a startup snapshot of the environment:
// working directory, file listing, runtime version, disk and memory
// usage. Everything here is informational, failures are printed inline
// and never gate execution.
func PrintDiagnostics(w io.Writer) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = fmt.Sprintf("(unknown: %s)", err)
	}
	fmt.Fprintf(w, "working directory: %s\n", cwd)

	entries, err := os.ReadDir(".")
	if err != nil {
		fmt.Fprintf(w, "could not list directory: %s\n", err)
	} else {
		fmt.Fprintln(w, "contents:")
		for _, entry := range entries {
			suffix := ""
			if entry.IsDir() {
				suffix = "/"
			}
			fmt.Fprintf(w, "  %s%s\n", entry.Name(), suffix)
		}
	}

	fmt.Fprintf(w, "runtime: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	vm, err := mem.VirtualMemory()
	if err != nil {
		fmt.Fprintf(w, "could not read memory usage: %s\n", err)
	} else {
		fmt.Fprintf(
			w, "memory: %d MB used / %d MB total (%.1f%%)\n",
			vm.Used/1_000_000, vm.Total/1_000_000, vm.UsedPercent,
		)
	}

	du, err := disk.Usage(cwd)
	if err != nil {
		fmt.Fprintf(w, "could not read disk usage: %s\n", err)
	} else {
		fmt.Fprintf(
			w, "disk: %d MB used / %d MB total (%.1f%%)\n",
			du.Used/1_000_000, du.Total/1_000_000, du.UsedPercent,
		)
	}

	info, err := host.Info()
	if err == nil {
		fmt.Fprintf(w, "host: %s, up %ds\n", info.Hostname, info.Uptime)
	}
}
