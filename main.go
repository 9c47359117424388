// This is the main-driver for our compiler.

package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mholt32/lc32/compiler"
	"github.com/mholt32/lc32/reader"
)

func main() {

	//
	// Look for flags.
	//
	debug := flag.Bool("debug", false, "Insert debug \"stuff\" in our generated output.")
	compileFlag := flag.Bool("compile", false, "Compile the program, via invoking gcc.")
	program := flag.String("filename", "a.out", "The program to write to.")
	run := flag.Bool("run", false, "Run the binary, post-compile.")
	flag.Parse()

	//
	// If we're running we're also compiling
	//
	if *run == true {
		*compileFlag = true
	}

	//
	// Source is always read from STDIN: a sequence of top-level forms,
	// not a single command-line expression.
	//
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading stdin: %s\n", err)
		os.Exit(1)
	}

	//
	// Create a compiler-object, with the program as input.
	//
	comp := compiler.New()

	//
	// Are we inserting debugging "stuff" ?
	//
	if *debug {
		comp.SetDebug(true)
	}

	//
	// Compile
	//
	out, err := comp.Compile(reader.New(string(src)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error compiling: %s\n", err.Error())
		os.Exit(1)
	}

	//
	// If we're not compiling the assembly language text which was
	// produced then we just write the program to STDOUT, and terminate.
	//
	if *compileFlag == false {
		fmt.Printf("%s", out)
		return
	}

	//
	// OK we're compiling the program, via gcc. -m32 targets the 32-bit
	// ABI this compiler generates against; -nostdlib -static matches
	// the hand-rolled _start entry point and direct int $0x80 syscalls
	// - there is no libc to link against or dynamically load.
	//
	gcc := exec.Command("gcc", "-m32", "-nostdlib", "-static", "-o", *program, "-x", "assembler", "-")
	gcc.Stdout = os.Stdout
	gcc.Stderr = os.Stderr

	//
	// We'll pipe our generated-program to STDIN of gcc, via a
	// temporary buffer-object.
	//
	var b bytes.Buffer
	b.Write([]byte(out))
	gcc.Stdin = &b

	//
	// Run gcc.
	//
	err = gcc.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error launching gcc: %s\n", err)
		os.Exit(1)
	}

	//
	// Running the binary too?
	//
	if *run == true {
		// An absolute path, so a bare name like "a.out" is not looked
		// up on $PATH.
		exePath, err := filepath.Abs(*program)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resolving %s: %s\n", *program, err)
			os.Exit(1)
		}
		exe := exec.Command(exePath)
		exe.Stdout = os.Stdout
		exe.Stderr = os.Stderr
		err = exe.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error launching %s: %s\n", *program, err)
			os.Exit(1)
		}
	}
}
