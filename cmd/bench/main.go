// Command bench measures construction and query performance of the LCE
// index variants over a corpus file.
//
// Example:
//
//	bench --text enwik8 --variant sss_noss --tau 1024 --q 1000000
//
// Every flag can also come from the environment with an LCE_ prefix
// (LCE_THREADS, LCE_TAU, LCE_VARIANT, ...).
package main

import (
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/viniciusth/lce"
	"github.com/viniciusth/lce/textload"
)

type variant struct {
	name  string
	build func(text []byte, opts *lce.Options) (lce.Index, error)
}

var variants = map[string]variant{
	"naive": {"naive", func(text []byte, _ *lce.Options) (lce.Index, error) {
		return lce.NewNaiveWordwise(text), nil
	}},
	"classic": {"classic", func(text []byte, opts *lce.Options) (lce.Index, error) {
		return lce.NewClassic[byte, uint32](text, opts)
	}},
	"fp": {"fp", func(text []byte, opts *lce.Options) (lce.Index, error) {
		buf := append([]byte(nil), text...)
		return lce.NewFP(buf, opts)
	}},
	"sss_naive": {"sss_naive", func(text []byte, opts *lce.Options) (lce.Index, error) {
		return lce.NewSSSNaive[uint32](text, opts)
	}},
	"sss_noss": {"sss_noss", func(text []byte, opts *lce.Options) (lce.Index, error) {
		return lce.NewSSSNoSS[uint32](text, opts)
	}},
	"sss_noss_long": {"sss_noss_long", func(text []byte, opts *lce.Options) (lce.Index, error) {
		long := *opts
		long.PreferLong = true
		return lce.NewSSSNoSS[uint32](text, &long)
	}},
}

type memMonitor struct {
	maxAlloc uint64
	stop     chan struct{}
	done     chan struct{}
}

func newMemMonitor() *memMonitor {
	mm := &memMonitor{stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(mm.done)
		for {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			if m.Alloc > mm.maxAlloc {
				mm.maxAlloc = m.Alloc
			}
			select {
			case <-mm.stop:
				return
			default:
				time.Sleep(10 * time.Millisecond)
			}
		}
	}()
	return mm
}

func (mm *memMonitor) Stop() uint64 {
	close(mm.stop)
	<-mm.done
	return mm.maxAlloc
}

func getCurrentAlloc() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc
}

func measureBuild(v variant, text []byte, opts *lce.Options) (time.Duration, uint64, uint64, lce.Index) {
	runtime.GC()
	mm := newMemMonitor()
	start := time.Now()
	ds, err := v.build(text, opts)
	if err != nil {
		panic(err)
	}
	dur := time.Since(start)
	peak := mm.Stop()
	runtime.GC()
	return dur, peak, getCurrentAlloc(), ds
}

func measureQuery(ds lce.Index, queries [][2]int) (time.Duration, uint64) {
	runtime.GC()
	start := time.Now()
	var checksum uint64
	for _, q := range queries {
		checksum += uint64(ds.LCE(q[0], q[1]))
	}
	return time.Since(start), checksum
}

func main() {
	flags := pflag.NewFlagSet("bench", pflag.ExitOnError)
	flags.String("text", "", "path to the corpus file")
	flags.String("variant", "classic", "index variant to benchmark")
	flags.Int("tau", 1024, "synchronizing set granularity")
	flags.Int("naive-scan", 32, "fp naive scan threshold")
	flags.Int("threads", runtime.GOMAXPROCS(0), "construction fan-out")
	flags.Int("q", 1_000_000, "number of queries")
	flags.Int("prefix", 0, "truncate the text to this many bytes (0 = all)")
	flags.Bool("normalize", false, "NFC-normalize the corpus")
	flags.Int("runs", 3, "number of measurement runs")
	flags.Int64("seed", 42, "query generator seed")
	flags.Uint64("base", 0, "fixed hasher base (0 = random)")
	flags.String("cpuprofile", "", "write a CPU profile to this file")
	flags.String("log-level", "info", "zerolog level")
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	v := viper.New()
	v.SetEnvPrefix("lce")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(v.GetString("log-level"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	textPath := v.GetString("text")
	if textPath == "" {
		fmt.Fprintln(os.Stderr, "usage: bench --text <path> [--variant v] [--tau n] [--q n] [--prefix n] [--runs n]")
		fmt.Fprintln(os.Stderr, "variants:", variantNames())
		os.Exit(1)
	}
	vr, ok := variants[v.GetString("variant")]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown variant %q; have %s\n", v.GetString("variant"), variantNames())
		os.Exit(1)
	}

	if profile := v.GetString("cpuprofile"); profile != "" {
		f, err := os.Create(profile)
		if err != nil {
			logger.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	text, err := textload.File(textPath, textload.Options{
		Prefix:    v.GetInt("prefix"),
		Normalize: v.GetBool("normalize"),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("could not load text")
	}
	logger.Info().Str("text", textPath).Int("n", len(text)).Msg("corpus loaded")

	opts := &lce.Options{
		Tau:                v.GetInt("tau"),
		NaiveScanThreshold: v.GetInt("naive-scan"),
		Base:               v.GetUint64("base"),
		Threads:            v.GetInt("threads"),
		Logger:             &logger,
	}

	numQueries := v.GetInt("q")
	r := rand.New(rand.NewSource(v.GetInt64("seed")))
	queries := make([][2]int, numQueries)
	for i := range queries {
		queries[i] = [2]int{r.Intn(len(text)), r.Intn(len(text))}
	}

	fmt.Println("variant,n,tau,threads,run,build_ns,build_peak,build_alloc,query_ns,checksum")
	for run := 0; run < v.GetInt("runs"); run++ {
		bt, bp, ba, ds := measureBuild(vr, text, opts)
		qt, checksum := measureQuery(ds, queries)
		fmt.Printf("%s,%d,%d,%d,%d,%d,%d,%d,%d,%d\n",
			vr.name, len(text), opts.Tau, opts.Threads, run,
			bt.Nanoseconds(), bp, ba, qt.Nanoseconds(), checksum)
		if fp, ok := ds.(*lce.FP); ok {
			fp.ReverseTransform()
		}
	}
}

func variantNames() string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
