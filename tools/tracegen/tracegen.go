package main

// tracegen.go is a tiny helper utility to generate deterministic alloc/free
// traces for standalone exercising of a slabcache.Cache (outside `go test`).
// It emits newline-separated "a <handle>" (alloc) / "f <handle>" (free) records that a
// replay harness can feed straight into Cache.Alloc/Cache.Free, keeping a
// live set of outstanding handles so every emitted free references a handle
// that is actually still outstanding at that point in the trace.
//
// Usage:
//
//	go run ./tools/tracegen -n 1000000 -free-prob=0.6 -seed=42 -out trace.txt
//
// Flags:
//
//	-n          number of random operations to generate (default 1e6); a
//	            free for every handle still live at the end follows them
//	-free-prob  probability an eligible step emits a free instead of an alloc (default 0.5)
//	-seed       RNG seed (default current time)
//	-out        output file (default stdout)
//
// The program is embarrassingly simple but placed under version control so
// any contributor can regenerate the exact trace used in a performance
// regression hunt.
//
// © 2025 slabcache authors. MIT License.

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"
)

func main() {
	var (
		n        = flag.Int("n", 1_000_000, "number of operations to generate")
		freeProb = flag.Float64("free-prob", 0.5, "probability of emitting a free when one is eligible")
		seedVal  = flag.Int64("seed", time.Now().UnixNano(), "PRNG seed")
		outPath  = flag.String("out", "", "output file (default stdout)")
	)
	flag.Parse()

	if *freeProb < 0 || *freeProb > 1 {
		fmt.Fprintln(os.Stderr, "free-prob must be in [0,1]")
		os.Exit(1)
	}

	rnd := rand.New(rand.NewSource(*seedVal))

	var out *os.File
	var err error
	if *outPath == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(*outPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot create file:", err)
			os.Exit(1)
		}
		defer out.Close()
	}

	w := bufio.NewWriterSize(out, 1<<20)
	defer w.Flush()

	var live []uint64
	var nextHandle uint64

	for i := 0; i < *n; i++ {
		if len(live) > 0 && rnd.Float64() < *freeProb {
			idx := rnd.Intn(len(live))
			h := live[idx]
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
			fmt.Fprintf(w, "f %d\n", h)
			continue
		}
		nextHandle++
		live = append(live, nextHandle)
		fmt.Fprintf(w, "a %d\n", nextHandle)
	}

	for _, h := range live {
		fmt.Fprintf(w, "f %d\n", h)
	}
}
