package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"golang.org/x/term"

	"github.com/telecontrol-mt/calendario/internal/api"
	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/calendar"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/config"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/gate"
	"github.com/telecontrol-mt/calendario/internal/modal"
	"github.com/telecontrol-mt/calendario/internal/reschedule"
	"github.com/telecontrol-mt/calendario/internal/session"
	"github.com/telecontrol-mt/calendario/internal/source"
	"github.com/telecontrol-mt/calendario/internal/store"
)

// envPassword holds the login password for non-interactive use.
const envPassword = "CALENDARIO_PASSWORD"

var stdinLines = bufio.NewReader(os.Stdin)

// readSecret prompts on stderr and reads a masked line from a terminal, or
// a plain line when stdin is not a terminal.
func readSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in int
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	line, err := stdinLines.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// backend is the object graph shared by the commands that talk to the
// server.
type backend struct {
	cfg   *config.Config
	api   *api.Client
	cal   *calendar.Model
	sess  *session.Session
	log   *board.Logger
	src   *source.Adapter
	store *store.Store
}

// connect builds the client, session and gate for cfg and logs in when a
// username is configured. Password prompts are answered from the terminal.
func connect(ctx context.Context, cfg *config.Config) (*backend, error) {
	client, err := api.New(cfg.Server.URL, api.WithTimeout(cfg.TimeoutDuration()))
	if err != nil {
		return nil, err
	}

	g := gate.New(gate.WithPolicy(cfg.GatePolicy()))
	g.SetNotify(func(p gate.Prompt) {
		go func() {
			v, err := readSecret(p.Message + " ")
			if err != nil {
				g.Cancel()
				return
			}
			g.Confirm(v)
		}()
	})

	cal := calendar.New(calendar.WithYearRange(cfg.Calendar.YearRange))
	b := &backend{
		cfg:  cfg,
		api:  client,
		cal:  cal,
		sess: session.New(cal, g),
		log:  board.NewLogger(cfg.Dir()),
	}

	var opts []source.Option
	if cfg.Cache.Enabled {
		st, err := store.Open(ctx, cfg.CachePath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: snapshot cache disabled: %v\n", err)
		} else {
			b.store = st
			opts = append(opts, source.WithSaver(st))
		}
	}
	b.src = source.New(client, b.sess, opts...)

	if err := b.login(ctx); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *backend) login(ctx context.Context) error {
	user := b.cfg.Server.Username
	if user == "" {
		return nil
	}
	pass := os.Getenv(envPassword)
	if pass == "" {
		var err error
		pass, err = readSecret(fmt.Sprintf("Contraseña de %s: ", user))
		if err != nil {
			return err
		}
	}
	return b.api.Login(ctx, user, pass, false)
}

// Close releases the snapshot store.
func (b *backend) Close() {
	if b.store != nil {
		_ = b.store.Close()
	}
}

// load fetches every collection with the configured filters and shows the
// result on the calendar.
func (b *backend) load(ctx context.Context, opts board.FilterOptions) source.Snapshot {
	snap := b.src.Load(ctx, opts)
	b.cal.SetEvents(snap.All())
	return snap
}

// rawTasks fetches the sources and returns every task, unfiltered. Failed
// absence or holiday loads are reported as warnings.
func (b *backend) rawTasks(ctx context.Context) ([]*event.Event, error) {
	snap := b.src.Load(ctx, board.FilterOptions{})
	printAlerts(alertMessages(snap))
	for _, a := range snap.Alerts {
		if a.Kind == event.KindTask {
			return nil, a.Err
		}
	}
	return b.sess.Raw(), nil
}

// loadAll fetches the sources and shows every task on the calendar
// regardless of the type filters.
func (b *backend) loadAll(ctx context.Context) error {
	snap := b.src.Load(ctx, board.FilterOptions{})
	if err := snap.Err(); err != nil && len(b.sess.Raw()) == 0 {
		return err
	}
	b.cal.SetEvents(slices.Concat(snap.Holidays, snap.Absences, b.sess.Raw()))
	return nil
}

// task runs loadAll and returns the raw task with id.
func (b *backend) task(ctx context.Context, id event.ID) (*event.Event, error) {
	if err := b.loadAll(ctx); err != nil {
		return nil, err
	}
	ev := b.sess.FindRaw(id)
	if ev == nil {
		return nil, clierr.Newf(clierr.EventNotFound, "tarea %s no encontrada", id)
	}
	return ev, nil
}

func (b *backend) modal() *modal.Modal {
	return modal.New(b.sess, b.api, modal.WithLogger(b.log))
}

func (b *backend) reschedule() *reschedule.Flow {
	return reschedule.New(b.sess, b.api, b.cal,
		reschedule.WithRefetch(b.cfg.RefetchAfterMove()),
		reschedule.WithLogger(b.log))
}

// alertMessages flattens the snapshot alerts.
func alertMessages(snap source.Snapshot) []string {
	out := make([]string, len(snap.Alerts))
	for i, a := range snap.Alerts {
		out[i] = a.Message
	}
	return out
}
