// run.go implements the "hearsay run" command which wires the transcriber,
// the pane engine, session persistence, and the observer server together
// for one capture session.
package cli

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearsay-dev/hearsay/internal/config"
	"github.com/hearsay-dev/hearsay/internal/llm"
	"github.com/hearsay-dev/hearsay/internal/log"
	"github.com/hearsay-dev/hearsay/internal/panes"
	"github.com/hearsay-dev/hearsay/internal/server"
	"github.com/hearsay-dev/hearsay/internal/session"
	"github.com/hearsay-dev/hearsay/internal/transcriber"
	"github.com/hearsay-dev/hearsay/internal/transcript"
	"github.com/hearsay-dev/hearsay/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a capture session",
	Long: `Start a capture session: launch the transcriber subprocess, feed the
growing transcript to the configured panes, persist everything under the
sessions directory, and serve the observer API if enabled.

The session runs until interrupted (Ctrl-C) or until the transcriber
subprocess exits.`,
	RunE: runRun,
}

var (
	modelFlag    string
	addrFlag     string
	noServerFlag bool
)

func init() {
	runCmd.Flags().StringVar(&modelFlag, "model", "", "Override the configured LLM model")
	runCmd.Flags().StringVar(&addrFlag, "addr", "", "Override the observer server address")
	runCmd.Flags().BoolVar(&noServerFlag, "no-server", false, "Disable the observer server for this session")
}

func runRun(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(".hearsay"); os.IsNotExist(err) {
		return fmt.Errorf(".hearsay/ not found. Run 'hearsay init' first")
	}

	cfg, err := config.ReadConfig(".")
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}
	if addrFlag != "" {
		cfg.Server.Addr = addrFlag
	}

	// LLM client. A missing binary is not fatal: panes report
	// llm-unavailable and the session still captures and persists.
	var client llm.Client
	cliClient := llm.NewCLIClient()
	if _, lookErr := exec.LookPath(cliClient.Binary); lookErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: %s not found in PATH; panes will be unavailable\n", cliClient.Binary)
	} else {
		client = cliClient
	}

	engine := panes.NewEngine(client)

	// Session persistence.
	store, err := session.NewStore(cfg.SessionsDir, session.Meta{
		Engine:    cfg.Transcriber.Engine,
		Language:  cfg.Transcriber.Language,
		ModelPath: cfg.Transcriber.ModelPath,
	}, session.Options{})
	if err != nil {
		return fmt.Errorf("creating session store: %w", err)
	}
	meta := store.Meta()

	// Session catalog (best effort).
	index, idxErr := session.OpenIndex(filepath.Join(".hearsay", "sessions.db"))
	if idxErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: session index unavailable: %v\n", idxErr)
	} else {
		defer index.Close()
		if recErr := index.Record(meta, store.Dir()); recErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record session: %v\n", recErr)
		}
	}

	logger, err := log.NewLogger(".hearsay")
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	logWarn(logger.Append(log.LogEvent{
		Event:     log.EventSessionStarted,
		SessionID: meta.ID,
		Engine:    meta.Engine,
	}))

	shortID := meta.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	display := ui.NewDisplay(shortID)
	if Verbose() {
		display.SetPlain()
	}

	// Pane observers. Callbacks run on the engine's critical path and must
	// not call back into the engine, so current views are tracked here.
	tracker := newPaneTracker()
	engine.OnUpdate(func(v panes.View) {
		prev, views := tracker.upsert(v)
		store.SetPaneOutputs(views)
		display.UpsertPane(v)
		logPaneTransition(logger, meta.ID, prev, v)
	})
	engine.OnRemove(func(id string) {
		views := tracker.remove(id)
		store.SetPaneOutputs(views)
		display.RemovePane(id)
		logWarn(logger.Append(log.LogEvent{
			Event:     log.EventPaneRemoved,
			SessionID: meta.ID,
			PaneID:    id,
		}))
	})

	engine.SetPanes(cfg.PaneConfigs())

	fmt.Printf("Session %s\n", shortID)
	fmt.Printf("Directory: %s\n\n", store.Dir())
	display.Start()

	// Transcriber subprocess.
	exited := make(chan error, 1)
	var bridge *transcriber.Bridge
	if len(cfg.Transcriber.Command) > 0 {
		bridge = transcriber.NewBridge(cfg.Transcriber.Command, transcriber.Handlers{
			OnReady: func(engineName string) {
				logWarn(logger.Append(log.LogEvent{
					Event:     log.EventTranscriberReady,
					SessionID: meta.ID,
					Engine:    engineName,
				}))
			},
			OnTranscript: func(text string, segments []transcript.Segment) {
				snap := transcript.Snapshot{Text: text, Segments: segments}
				engine.SetTranscript(snap)
				store.SetTranscript(snap)
				display.SetSegments(len(segments))
			},
			OnError: func(message string) {
				fmt.Fprintf(os.Stderr, "Warning: transcriber: %s\n", message)
			},
			OnExit: func(err error) {
				exited <- err
			},
		})
		if startErr := bridge.Start(); startErr != nil {
			store.Close()
			return fmt.Errorf("starting transcriber: %w", startErr)
		}
	} else {
		fmt.Fprintln(os.Stderr, "Warning: no transcriber command configured; transcript will not advance")
	}

	// Observer server.
	var srv *server.Server
	if cfg.Server.Enabled && !noServerFlag {
		srv = server.New(engine)
		go func() {
			if listenErr := srv.Listen(cfg.Server.Addr); listenErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: observer server: %v\n", listenErr)
			}
		}()
	}

	// Run until interrupted or the transcriber exits.
	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigint:
		fmt.Println("\nStopping...")
	case err := <-exited:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Transcriber exited: %v\n", err)
		} else {
			fmt.Println("\nTranscriber finished.")
		}
	}

	if bridge != nil {
		bridge.Stop()
	}
	if srv != nil {
		_ = srv.Shutdown()
	}

	// Force-flush everything before reporting the session closed.
	store.Close()
	if index != nil && idxErr == nil {
		if finErr := index.Finish(meta.ID, time.Now()); finErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to finish session record: %v\n", finErr)
		}
	}
	logWarn(logger.Append(log.LogEvent{
		Event:     log.EventSessionEnded,
		SessionID: meta.ID,
	}))

	display.Finish()
	fmt.Printf("Session saved to %s\n", store.Dir())
	return nil
}

// paneTracker keeps the ordered projection of every pane so observers can
// hand complete snapshots to the session store without querying the engine.
type paneTracker struct {
	mu    sync.Mutex
	order []string
	views map[string]panes.View
}

func newPaneTracker() *paneTracker {
	return &paneTracker{views: make(map[string]panes.View)}
}

// upsert records a view and returns the previous one plus the full ordered
// snapshot.
func (t *paneTracker) upsert(v panes.View) (panes.View, []panes.View) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev, seen := t.views[v.ID]
	if !seen {
		t.order = append(t.order, v.ID)
	}
	t.views[v.ID] = v
	return prev, t.snapshot()
}

func (t *paneTracker) remove(id string) []panes.View {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.views, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return t.snapshot()
}

func (t *paneTracker) snapshot() []panes.View {
	out := make([]panes.View, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.views[id])
	}
	return out
}

// logPaneTransition appends run lifecycle events on status changes.
func logPaneTransition(logger *log.Logger, sessionID string, prev, cur panes.View) {
	if prev.Status == cur.Status {
		return
	}
	ev := log.LogEvent{
		SessionID: sessionID,
		PaneID:    cur.ID,
		Title:     cur.Title,
		Status:    string(cur.Status),
		Model:     cur.Model,
	}
	switch cur.Status {
	case panes.StatusGenerating:
		ev.Event = log.EventPaneRunStarted
	case panes.StatusReady:
		ev.Event = log.EventPaneRunCompleted
		ev.Items = len(cur.Items)
	case panes.StatusError:
		ev.Event = log.EventPaneRunFailed
		ev.Error = cur.Error
	default:
		return
	}
	logWarn(logger.Append(ev))
}

// logWarn surfaces logging failures without interrupting the session.
func logWarn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to append event log: %v\n", err)
	}
}
