// Package runner is the differential engine: it compiles each job with the
// reference and the candidate compiler, runs both binaries, and classifies
// the job into exactly one Outcome.
//
// Every command runs with the job directory as an explicit working directory;
// the harness process never changes its own.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dkoosis/difftest/internal/console"
	"github.com/dkoosis/difftest/internal/workspace"
)

// File names inside a job directory.
const (
	RefAsm  = "asm-gcc.s"
	RefExe  = "exe-gcc"
	CandAsm = "asm-ifcc.s"
	CandExe = "exe-ifcc"

	RefCompileLog  = "gcc-compile.txt"
	RefLinkLog     = "gcc-link.txt"
	RefExecuteLog  = "gcc-execute.txt"
	CandCompileLog = "ifcc-compile.txt"
	CandLinkLog    = "ifcc-link.txt"
	CandExecuteLog = "ifcc-execute.txt"
)

// Toolchain describes the reference compiler. The same driver assembles and
// links both compilers' assembly.
type Toolchain struct {
	Compiler    string   // e.g. "gcc"
	CompileArgs []string // e.g. -S -O0 -Wall
	LinkArgs    []string // extra arguments for the link step
	ExtraArgs   []string // prepended to every step, e.g. -arch x86_64
}

// CompileArgv is the reference compile command for one job.
func (t Toolchain) CompileArgv() []string {
	argv := []string{t.Compiler}
	argv = append(argv, t.ExtraArgs...)
	argv = append(argv, t.CompileArgs...)
	return append(argv, "-o", RefAsm, workspace.SourceName)
}

// LinkArgv assembles and links asm into exe.
func (t Toolchain) LinkArgv(exe, asm string) []string {
	argv := []string{t.Compiler}
	argv = append(argv, t.ExtraArgs...)
	argv = append(argv, t.LinkArgs...)
	return append(argv, "-o", exe, asm)
}

// Verdict is the terminal result for one job.
type Verdict struct {
	Job     workspace.Job
	Outcome Outcome
	Elapsed time.Duration

	// ReferenceRun and CandidateRun are the execution transcripts, when the
	// binaries ran. The reference exit status is part of its transcript but
	// never stops the comparison.
	ReferenceRun []byte
	CandidateRun []byte

	// Log is the job's most telling log file for this outcome.
	Log string
}

// Runner drives jobs through the differential pipeline.
type Runner struct {
	Invoker   Invoker
	Reference Toolchain
	// Wrapper is the candidate compiler script: Wrapper <asm-out> <source>.
	Wrapper string
	Console *console.Console
	// OnStart, when set, is called as each job begins.
	OnStart func(workspace.Job)
}

// step runs one command in the job directory.
func (r *Runner) step(ctx context.Context, job workspace.Job, log string, argv ...string) (Result, error) {
	return r.Invoker.Invoke(ctx, Invocation{Dir: job.Dir, Argv: argv, Log: log})
}

// RunJob classifies one job. The error is non-nil only when the harness
// itself failed or ctx was cancelled; in that case the verdict is meaningless.
func (r *Runner) RunJob(ctx context.Context, job workspace.Job) (Verdict, error) {
	start := time.Now()
	v, err := r.classify(ctx, job)
	v.Job = job
	v.Elapsed = time.Since(start)
	return v, err
}

func (r *Runner) classify(ctx context.Context, job workspace.Job) (Verdict, error) {
	var v Verdict

	// Reference: compile, then link, then run. Either failure marks the
	// program as one the reference does not accept.
	ref, err := r.step(ctx, job, RefCompileLog, r.Reference.CompileArgv()...)
	if err != nil {
		return v, err
	}
	if ref.TimedOut {
		return timedOut(job, RefCompileLog), nil
	}
	refStatus := ref.Status
	if refStatus == 0 {
		link, err := r.step(ctx, job, RefLinkLog, r.Reference.LinkArgv(RefExe, RefAsm)...)
		if err != nil {
			return v, err
		}
		if link.TimedOut {
			return timedOut(job, RefLinkLog), nil
		}
		refStatus = link.Status
	}
	if refStatus == 0 {
		run, err := r.step(ctx, job, RefExecuteLog, filepath.Join(job.Dir, RefExe))
		if err != nil {
			return v, err
		}
		if run.TimedOut {
			return timedOut(job, RefExecuteLog), nil
		}
		v.ReferenceRun = run.Transcript()
		r.Console.Dump(2, bytes.NewReader(v.ReferenceRun))
	}

	// Candidate: compile through the wrapper.
	cand, err := r.step(ctx, job, CandCompileLog, r.Wrapper, CandAsm, workspace.SourceName)
	if err != nil {
		return v, err
	}
	if cand.TimedOut {
		return timedOut(job, CandCompileLog), nil
	}

	switch {
	case refStatus != 0 && cand.Status != 0:
		v.Outcome = BothReject
		return v, nil
	case refStatus != 0:
		v.Outcome = CandidateFalseAccept
		v.Log = filepath.Join(job.Dir, CandCompileLog)
		return v, nil
	case cand.Status != 0:
		v.Outcome = CandidateFalseReject
		v.Log = filepath.Join(job.Dir, CandCompileLog)
		return v, nil
	}

	link, err := r.step(ctx, job, CandLinkLog, r.Reference.LinkArgv(CandExe, CandAsm)...)
	if err != nil {
		return v, err
	}
	if link.TimedOut {
		return timedOut(job, CandLinkLog), nil
	}
	if link.Status != 0 {
		v.Outcome = LinkFailure
		v.Log = filepath.Join(job.Dir, CandLinkLog)
		return v, nil
	}

	run, err := r.step(ctx, job, CandExecuteLog, filepath.Join(job.Dir, CandExe))
	if err != nil {
		return v, err
	}
	if run.TimedOut {
		v.Outcome = Timeout
		v.Log = filepath.Join(job.Dir, CandExecuteLog)
		return v, nil
	}
	v.CandidateRun = run.Transcript()

	if !bytes.Equal(v.ReferenceRun, v.CandidateRun) {
		v.Outcome = ExecutionMismatch
		v.Log = filepath.Join(job.Dir, CandExecuteLog)
		return v, nil
	}
	v.Outcome = Pass
	return v, nil
}

func timedOut(job workspace.Job, log string) Verdict {
	return Verdict{Outcome: Timeout, Log: filepath.Join(job.Dir, log)}
}

// Run processes jobs strictly one after another, in the given order, calling
// report with each verdict as soon as it is known. It stops at the first
// harness error or cancellation and returns the verdicts completed so far.
func (r *Runner) Run(ctx context.Context, jobs []workspace.Job, report func(Verdict)) ([]Verdict, error) {
	verdicts := make([]Verdict, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return verdicts, err
		}
		r.Console.Debugf(2, "running %s", job.ID)
		if r.OnStart != nil {
			r.OnStart(job)
		}
		v, err := r.RunJob(ctx, job)
		if err != nil {
			return verdicts, fmt.Errorf("%s: %w", job.ID, err)
		}
		verdicts = append(verdicts, v)
		if report != nil {
			report(v)
		}
	}
	return verdicts, nil
}

// Failures returns the ids of failing verdicts.
func Failures(verdicts []Verdict) []string {
	var ids []string
	for _, v := range verdicts {
		if v.Outcome.Failed() {
			ids = append(ids, v.Job.ID)
		}
	}
	return ids
}
