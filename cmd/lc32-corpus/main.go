// lc32-corpus runs every *.scm fixture in a directory through the
// compiler, assembles and links the result with gcc, runs the binary,
// and diffs its stdout against a golden *.expected file - all
// concurrently, with a per-program deadline.
//
// Grounded on jcorbin-gothird/scripts/gen_vm_expects.go's use of
// errgroup.WithContext plus context.WithTimeout to run external
// processes concurrently and collect their output; generalized here
// from "one gofmt pipeline" to "N independent compile-assemble-run-diff
// pipelines fanned out over errgroup.Go".
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mholt32/lc32/compiler"
	"github.com/mholt32/lc32/reader"
)

func main() {
	dir := flag.String("dir", "testdata/corpus", "directory of .scm fixtures with matching .expected golden files")
	timeout := flag.Duration("timeout", 5*time.Second, "per-program assemble+link+run deadline")
	keep := flag.Bool("keep", false, "keep the assembled binaries instead of deleting them")
	flag.Parse()

	fixtures, err := findFixtures(*dir)
	if err != nil {
		log.Fatalf("scanning %s: %v", *dir, err)
	}
	if len(fixtures) == 0 {
		log.Fatalf("no .scm fixtures found under %s", *dir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout*time.Duration(len(fixtures)))
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	results := make([]string, len(fixtures))

	for i, name := range fixtures {
		i, name := i, name
		eg.Go(func() error {
			msg, err := runFixture(ctx, *dir, name, *timeout, *keep)
			results[i] = msg
			return err
		})
	}

	if err := eg.Wait(); err != nil {
		for _, r := range results {
			if r != "" {
				fmt.Println(r)
			}
		}
		log.Fatalf("corpus run failed: %v", err)
	}

	for _, r := range results {
		fmt.Println(r)
	}
}

// findFixtures returns every "*.scm" base name (without extension)
// under dir that also has a matching "*.expected" file.
func findFixtures(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".scm") {
			continue
		}
		base := strings.TrimSuffix(ent.Name(), ".scm")
		if _, err := os.Stat(filepath.Join(dir, base+".expected")); err != nil {
			continue
		}
		names = append(names, base)
	}
	return names, nil
}

// runFixture compiles, assembles, links, and runs one fixture, and
// diffs its stdout against the golden file. The returned string is a
// one-line pass/fail summary; the error (non-nil only on failure)
// is what propagates through the errgroup and aborts the remaining
// in-flight fixtures via ctx cancellation.
func runFixture(ctx context.Context, dir, name string, timeout time.Duration, keep bool) (string, error) {
	src, err := os.ReadFile(filepath.Join(dir, name+".scm"))
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	expected, err := os.ReadFile(filepath.Join(dir, name+".expected"))
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}

	c := compiler.New()
	asmText, err := c.Compile(reader.New(string(src)))
	if err != nil {
		return "", fmt.Errorf("%s: compile: %w", name, err)
	}

	binPath, err := os.CreateTemp("", "lc32-corpus-*.bin")
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	binPath.Close()
	if !keep {
		defer os.Remove(binPath.Name())
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	gcc := exec.CommandContext(runCtx, "gcc", "-m32", "-nostdlib", "-static", "-o", binPath.Name(), "-x", "assembler", "-")
	gcc.Stdin = strings.NewReader(asmText)
	var gccErr bytes.Buffer
	gcc.Stderr = &gccErr
	if err := gcc.Run(); err != nil {
		return "", fmt.Errorf("%s: gcc: %w: %s", name, err, gccErr.String())
	}

	run := exec.CommandContext(runCtx, binPath.Name())
	var stdout, stderr bytes.Buffer
	run.Stdout = &stdout
	run.Stderr = &stderr
	if err := run.Run(); err != nil {
		return "", fmt.Errorf("%s: run: %w: %s", name, err, stderr.String())
	}

	if stdout.String() != string(expected) {
		return "", fmt.Errorf("%s: stdout mismatch\n--- got ---\n%s\n--- want ---\n%s", name, stdout.String(), string(expected))
	}
	return fmt.Sprintf("PASS %s", name), nil
}
