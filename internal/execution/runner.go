// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package execution

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/matt-FFFFFF/scripter/internal/config"
)

// processPollInterval is how often a worker checks the child for exit and the
// requested-action signal for a pending stop/disconnect.
const processPollInterval = 100 * time.Millisecond

// progressUpdate is one status report from a worker, keyed by the script's
// index local to its execution list.
type progressUpdate struct {
	scriptIdx int
	status    Status
}

// scriptExecutionData is the state of one queued run: the scripts it will
// execute and the channels shared with its worker goroutine.
type scriptExecutionData struct {
	scriptsToRun    []config.ScriptDefinition
	progress        chan progressUpdate
	requestedAction requestedAction
	// done is closed when the worker goroutine returns; nil until started.
	done chan struct{}
	// joined records that the controller already observed the worker's end.
	joined bool
}

// started reports whether a worker was ever launched for this data.
func (d *scriptExecutionData) started() bool {
	return d.done != nil
}

// isRunning reports, without blocking, whether the worker goroutine is still
// alive.
func (d *scriptExecutionData) isRunning() bool {
	if d.done == nil {
		return false
	}

	select {
	case <-d.done:
		return false
	default:
		return true
	}
}

// join blocks until the worker goroutine has returned. It must only be called
// after started().
func (d *scriptExecutionData) join() {
	<-d.done
}

// progressChannelCapacity bounds the number of status messages a worker can
// produce: one start and one terminal report per script, one report per
// retry, plus headroom for two full disconnect bursts. Sized this way the
// buffered channel never blocks the worker even when the receiver has been
// abandoned.
func progressChannelCapacity(scripts []config.ScriptDefinition) int {
	n := 0
	for i := range scripts {
		n += scripts[i].RetryCount + 2
	}

	return n + 2*(len(scripts)+1)
}

// sendStatus reports a status transition. Transport is best-effort: when the
// receiver stopped draining (disconnected or removed execution) the buffered
// channel may fill and further redundant messages are dropped.
func sendStatus(progress chan<- progressUpdate, scriptIdx int, status Status) {
	select {
	case progress <- progressUpdate{scriptIdx: scriptIdx, status: status}:
	default:
	}
}

// sendDisconnectStatuses emits synthetic Disconnected statuses for every
// script in [firstIdx, listLen), then one sentinel at listLen that signals
// the end of the transmission.
func sendDisconnectStatuses(progress chan<- progressUpdate, firstIdx, listLen int) {
	for i := firstIdx; i <= listLen; i++ {
		sendStatus(progress, i, Status{Result: ResultDisconnected})
	}
}

// runScripts launches the worker goroutine for one execution list. The worker
// runs the scripts strictly in order, applying the retry, skip and
// stop/disconnect policy, and reports every status transition through the
// progress channel. The scripts are cloned so later truncation of the list's
// queue (disconnect reclaim) never races the worker.
func runScripts(
	data *scriptExecutionData,
	fs afero.Fs,
	logDirectory string,
	hadFailuresBefore bool,
	cfg config.AppConfig,
	recentLogs *SharedLogBuffer,
	firstScriptIdx int,
) {
	progress := make(chan progressUpdate, progressChannelCapacity(data.scriptsToRun))
	done := make(chan struct{})

	data.progress = progress
	data.done = done

	scripts := config.CloneScripts(data.scriptsToRun)
	action := &data.requestedAction

	go func() {
		defer close(done)

		w := &worker{
			fs:             fs,
			cfg:            cfg,
			logDirectory:   logDirectory,
			recentLogs:     recentLogs,
			firstScriptIdx: firstScriptIdx,
			progress:       progress,
			action:         action,
		}

		w.run(scripts, hadFailuresBefore)
	}()
}

// worker is the state of one execution-list run on its dedicated goroutine.
type worker struct {
	fs             afero.Fs
	cfg            config.AppConfig
	logDirectory   string
	recentLogs     *SharedLogBuffer
	firstScriptIdx int
	progress       chan progressUpdate
	action         *requestedAction

	killRequested bool
}

func (w *worker) run(scripts []config.ScriptDefinition, hadFailuresBefore bool) {
	hasPreviousScriptFailed := hadFailuresBefore

	for scriptIdx := range scripts {
		script := &scripts[scriptIdx]

		now := time.Now()
		state := Status{StartTime: &now}

		if w.killRequested || (hasPreviousScriptFailed && !script.IgnorePreviousFailures) {
			state.Result = ResultSkipped
			state.FinishTime = &now

			sendStatus(w.progress, scriptIdx, state)

			continue
		}

		sendStatus(w.progress, scriptIdx, state)

		failed, disconnected := w.runWithRetries(scripts, scriptIdx, script, &state)
		if failed {
			hasPreviousScriptFailed = true
		} else if !w.killRequested {
			hasPreviousScriptFailed = false
		}

		if disconnected {
			// the remaining scripts were reported as disconnected; they are
			// the controller's responsibility to re-stage, not this worker's
			return
		}
	}
}

// runWithRetries runs one script until it succeeds, exhausts its retries, or
// hits a non-retryable fault. It returns whether the script ended failed and
// whether a disconnect was processed during the run.
func (w *worker) runWithRetries(
	scripts []config.ScriptDefinition,
	scriptIdx int,
	script *config.ScriptDefinition,
	state *Status,
) (failed, disconnected bool) {
	for {
		if w.killRequested {
			return false, disconnected
		}

		outcome := w.runOnce(scripts, scriptIdx, script, state, &disconnected)

		switch outcome {
		case attemptSucceeded:
			w.finish(scriptIdx, state, ResultSuccess)
			return false, disconnected

		case attemptFailedTerminal:
			w.finish(scriptIdx, state, ResultFailed)
			return true, disconnected

		case attemptFailedRetryable:
			if state.RetryCount < script.RetryCount && !w.killRequested {
				state.RetryCount++
				sendStatus(w.progress, scriptIdx, *state)

				continue
			}

			w.finish(scriptIdx, state, ResultFailed)

			return true, disconnected
		}
	}
}

type attemptOutcome int

const (
	attemptSucceeded attemptOutcome = iota
	attemptFailedRetryable
	// attemptFailedTerminal is a configuration-level fault (empty executor,
	// spawn failure) that retrying cannot fix.
	attemptFailedTerminal
)

// finish stamps the terminal status and reports it.
func (w *worker) finish(scriptIdx int, state *Status, result Result) {
	now := time.Now()
	state.FinishTime = &now
	state.Result = result

	sendStatus(w.progress, scriptIdx, *state)
}

// runOnce performs a single spawn attempt of the script.
func (w *worker) runOnce(
	scripts []config.ScriptDefinition,
	scriptIdx int,
	script *config.ScriptDefinition,
	state *Status,
	disconnected *bool,
) attemptOutcome {
	commandLine := commandLineFor(script, w.cfg.Paths)

	// best-effort; a missing log directory only disables capture
	_ = w.fs.MkdirAll(w.logDirectory, 0o755)

	outputPath := scriptOutputPath(w.logDirectory, script.Name, w.firstScriptIdx+scriptIdx, state.RetryCount)

	outputFile, fileErr := w.fs.Create(outputPath)

	// a nil executor means "use the platform default"; an explicitly empty
	// one is a configuration error
	executor := script.Executor
	if executor == nil {
		executor = config.DefaultExecutor()
	}

	if len(executor) == 0 {
		w.recentLogs.Push(OutputLine{
			Text:      "Empty executor is not supported",
			Kind:      OutputError,
			Timestamp: time.Now(),
		})

		if fileErr == nil {
			_ = outputFile.Close()
		}

		return attemptFailedTerminal
	}

	w.recentLogs.Push(OutputLine{
		Text:      runEventText(script, state.RetryCount, executor, commandLine, w.cfg.EnvVars),
		Kind:      OutputEvent,
		Timestamp: time.Now(),
	})

	cmd := exec.Command(executor[0], append(executor[1:], commandLine)...) //nolint:gosec
	cmd.Dir = resolveWorkingDir(script, w.cfg.Paths)
	cmd.Env = environWith(w.cfg.EnvVars)
	cmd.Stdin = nil

	hideWindow(cmd)

	capture := !script.IgnoreOutput && fileErr == nil

	var (
		rOut, wOut *os.File
		rErr, wErr *os.File
	)

	if capture {
		var errOut, errErr error

		rOut, wOut, errOut = os.Pipe()
		rErr, wErr, errErr = os.Pipe()

		if errOut != nil || errErr != nil {
			closePipes(rOut, wOut, rErr, wErr)

			capture = false
		} else {
			cmd.Stdout = wOut
			cmd.Stderr = wErr
		}
	}

	if err := cmd.Start(); err != nil {
		closePipes(rOut, wOut, rErr, wErr)

		if fileErr == nil {
			line := OutputLine{
				Text:      fmt.Sprintf("Failed to start the process: %v", err),
				Kind:      OutputError,
				Timestamp: time.Now(),
			}

			_, _ = outputFile.WriteString(line.Text)
			_ = outputFile.Close()

			w.recentLogs.Push(line)
		}

		// a broken spawn setup won't fix itself, so no retry
		return attemptFailedTerminal
	}

	var muxDone <-chan struct{}

	if capture {
		// the child owns the write ends now
		_ = wOut.Close()
		_ = wErr.Close()

		muxDone = forwardOutput(rOut, rErr, w.recentLogs, outputFile)
	} else if fileErr == nil {
		_ = outputFile.Close()
	}

	exitErr := w.pollUntilExit(cmd, scripts, scriptIdx, disconnected)

	if muxDone != nil {
		<-muxDone
	}

	if exitErr == nil && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		return attemptSucceeded
	}

	return attemptFailedRetryable
}

// pollUntilExit waits for the child to exit, checking the requested-action
// signal every processPollInterval. Stop kills the child; Disconnect reports
// synthetic Disconnected statuses for every not-yet-reached script, exactly
// once per request, without touching the running child.
func (w *worker) pollUntilExit(
	cmd *exec.Cmd,
	scripts []config.ScriptDefinition,
	scriptIdx int,
	disconnected *bool,
) error {
	waitCh := make(chan error, 1)

	go func() {
		waitCh <- cmd.Wait()
	}()

	ticker := time.NewTicker(processPollInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-waitCh:
			return err

		case <-ticker.C:
			switch w.action.consume() {
			case actionStop:
				w.killProcess(cmd)
				w.killRequested = true

			case actionDisconnect:
				firstDisconnectedIdx := scriptIdx + 1

				listLen := len(scripts)
				if *disconnected {
					listLen = firstDisconnectedIdx
				}

				sendDisconnectStatuses(w.progress, firstDisconnectedIdx, listLen)

				*disconnected = true
			}
		}
	}
}

// killProcess kills the child best-effort; failures are logged, not escalated.
func (w *worker) killProcess(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}

	if err := cmd.Process.Kill(); err != nil {
		w.recentLogs.Push(OutputLine{
			Text:      fmt.Sprintf("failed to kill child process: %v", err),
			Kind:      OutputError,
			Timestamp: time.Now(),
		})
	}
}

// resolveWorkingDir picks the directory the child starts in.
func resolveWorkingDir(script *config.ScriptDefinition, paths config.Paths) string {
	wd := script.WorkingDirectory

	if wd.Kind == config.PathKindExecutableDir {
		return filepath.Join(paths.ExeDir, wd.Path)
	}

	switch {
	case wd.Path == "":
		return paths.WorkDir
	case filepath.IsAbs(wd.Path):
		return wd.Path
	default:
		return filepath.Join(paths.WorkDir, wd.Path)
	}
}

// environWith is the inherited environment plus the configured extra
// variables, sorted for deterministic event lines.
func environWith(extra map[string]string) []string {
	env := os.Environ()

	for _, k := range sortedKeys(extra) {
		env = append(env, k+"="+extra[k])
	}

	return env
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// runEventText is the human-readable event pushed to the ring buffer when a
// script (re)starts.
func runEventText(
	script *config.ScriptDefinition,
	retryCount int,
	executor []string,
	commandLine string,
	envVars map[string]string,
) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Running %q", script.Name)

	if retryCount > 0 {
		fmt.Fprintf(&sb, " retry #%d", retryCount)
	}

	fmt.Fprintf(&sb, "\n[%s][%s]", strings.Join(executor, "]["), commandLine)

	if len(envVars) > 0 {
		pairs := make([]string, 0, len(envVars))
		for _, k := range sortedKeys(envVars) {
			pairs = append(pairs, k+"="+envVars[k])
		}

		fmt.Fprintf(&sb, " env: %s", strings.Join(pairs, ", "))
	}

	return sb.String()
}

func closePipes(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}
