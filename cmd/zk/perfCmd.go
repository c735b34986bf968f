package zk

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/zkwire/cmd/util"
	"github.com/ValentinKolb/zkwire/lib/jute"
	"github.com/ValentinKolb/zkwire/lib/proto"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for servers",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfRoot        = "/__zkwire_perf"
	perfValueSizeKB = 1
	perfNumThreads  = 10
	perfNodeSpread  = 100
	perfSkip        = make([]string, 0)

	// latencies of the individual requests, one timer per test
	perfRegistry = metrics.NewRegistry()
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "value-size"
	perfTestCmd.Flags().Int(key, 1, util.WrapString("How large the node data for the set test should be (in KB)"))
	key = "nodes"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different nodes to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfValueSizeKB = viper.GetInt("value-size")
	perfNodeSpread = viper.GetInt("nodes")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfNodeSpread < 1 {
		return fmt.Errorf("nodes must be at least 1")
	}
	return nil
}

// perfTest is a single benchmark. prepare runs before the timer starts, op
// is called with the node of the current iteration.
type perfTest struct {
	name    string
	prepare bool
	op      func(path string) error
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	if _, err := zkClient.Create(perfRoot, jute.NoBytes(), nil, proto.CreatePersistent); err != nil && !errors.Is(err, proto.ErrNodeExists) {
		return fmt.Errorf("failed to create %s: %w", perfRoot, err)
	}
	defer func() {
		if err := zkClient.Delete(perfRoot, proto.AnyVersion); err != nil {
			Logger.Warningf("Failed to delete %s: %v", perfRoot, err)
		}
	}()

	value := make([]byte, perfValueSizeKB*1024)
	tests := []perfTest{
		{name: "create", op: func(path string) error {
			_, err := zkClient.Create(path, jute.SomeBytes([]byte("test")), nil, proto.CreatePersistent)
			if errors.Is(err, proto.ErrNodeExists) {
				return nil
			}
			return err
		}},
		{name: "set", prepare: true, op: func(path string) error {
			_, err := zkClient.SetData(path, value, proto.AnyVersion)
			return err
		}},
		{name: "get", prepare: true, op: func(path string) error {
			_, _, err := zkClient.GetData(path, false)
			return err
		}},
		{name: "exists", prepare: true, op: func(path string) error {
			_, _, err := zkClient.Exists(path, false)
			return err
		}},
		{name: "exists-not", op: func(path string) error {
			_, _, err := zkClient.Exists(path+"-missing", false)
			return err
		}},
		{name: "ping", op: func(string) error {
			_, err := zkClient.Ping()
			return err
		}},
	}

	fmt.Println("staring tests...")

	// Create results map
	results := make(map[string]testing.BenchmarkResult)
	for _, test := range tests {
		result := runPerfTest(test)
		results[test.name] = result
		printResult(test.name, result)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// runPerfTest benchmarks a single operation and records every latency
func runPerfTest(test perfTest) testing.BenchmarkResult {
	timer := metrics.GetOrRegisterTimer(test.name, perfRegistry)

	return testing.Benchmark(func(b *testing.B) {
		if shouldSkip(test.name) {
			return
		}

		// prepare nodes
		getPath, iter := getPaths(test.name)
		if test.prepare {
			iter(func(p string) {
				if _, err := zkClient.Create(p, jute.SomeBytes([]byte("test")), nil, proto.CreatePersistent); err != nil && !errors.Is(err, proto.ErrNodeExists) {
					Logger.Errorf("(%s) - error creating node: %v", test.name, err)
				}
			})
		}

		// cleanup
		b.Cleanup(func() {
			iter(func(p string) {
				if err := zkClient.Delete(p, proto.AnyVersion); err != nil && !errors.Is(err, proto.ErrNoNode) {
					Logger.Errorf("(%s) - error deleting node: %v", test.name, err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				if err := test.op(getPath(counter)); err != nil {
					Logger.Errorf("(%s) - error: %v", test.name, err)
				}
				timer.UpdateSince(start)
				counter++
			}
		})
	})
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates a list of test node paths and functions to work with them
func getPaths(prefix string) (func(int) string, func(func(string))) {
	paths := make([]string, perfNodeSpread)
	for i := 0; i < perfNodeSpread; i++ {
		paths[i] = fmt.Sprintf("%s/%s-%d", perfRoot, prefix, i)
	}

	// Function to get a path by index (with wraparound)
	getPath := func(i int) string {
		return paths[i%perfNodeSpread]
	}

	// Function to iterate over all paths and apply a function to each
	iteratePaths := func(fn func(string)) {
		for _, p := range paths {
			fn(p)
		}
	}

	return getPath, iteratePaths
}

// printResult prints the result of a benchmark test together with the
// latency percentiles of the request timer
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-14sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	snapshot := metrics.GetOrRegisterTimer(test, perfRegistry).Snapshot()
	ps := snapshot.Percentiles([]float64{0.5, 0.99})

	fmt.Printf("%-14s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p99=%s\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec, time.Duration(ps[0]), time.Duration(ps[1]))
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult) error {
	config := util.GetClientConfig()

	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50Ns", "P99Ns", "Skipped",
		"Endpoints", "TimeoutSec", "Transport",
		"Threads", "ValueSizeKB", "Nodes",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}
		ps := metrics.GetOrRegisterTimer(test, perfRegistry).Snapshot().Percentiles([]float64{0.5, 0.99})

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			skipped,
			strings.Join(config.Transport.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfValueSizeKB),
			strconv.Itoa(perfNodeSpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
