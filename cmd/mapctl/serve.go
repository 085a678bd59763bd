package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/annel0/isomap/internal/editor"
	"github.com/annel0/isomap/internal/world"
)

// cmdServe держит карту открытой: /ws принимает команды редактора,
// /metrics отдаёт метрики. Карта сохраняется по таймеру и при остановке.
func cmdServe(ctx context.Context, s *session, args []string) error {
	fset := s.flagSet("serve")
	slot := fset.String("slot", defaultSlot, "Слот сохранения")
	addr := fset.String("addr", ":8090", "Адрес HTTP сервера")
	autosave := fset.Duration("autosave", time.Minute, "Период автосохранения, 0: только при остановке")
	if err := fset.Parse(args); err != nil {
		return err
	}

	m, fwd, err := s.openMap(ctx, *slot)
	if err != nil {
		return err
	}
	defer fwd.Close()

	save := func(ctx context.Context, m *world.Map) error {
		return s.saveMap(ctx, *slot, m)
	}
	ed, err := editor.NewServer(ctx, editor.Options{
		Map:      m,
		Bus:      s.bus,
		Exporter: s.exporter,
		Save:     save,
	})
	if err != nil {
		return err
	}
	defer ed.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", ed)
	mux.Handle("/metrics", s.exporter.Handler())
	srv := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Редактор карты %s слушает %s", *slot, *addr)
		errCh <- srv.ListenAndServe()
	}()

	var tick <-chan time.Time
	if *autosave > 0 {
		ticker := time.NewTicker(*autosave)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP сервер: %w", err)
			}
			return nil
		case <-tick:
			if reply := ed.Handle(ctx, editor.Message{Type: editor.MsgSave}); reply.Type == editor.MsgError {
				s.log.Warn("Автосохранение не удалось: %s", reply.Payload)
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				s.log.Warn("Остановка HTTP сервера: %v", err)
			}
			ed.Handle(shutdownCtx, editor.Message{Type: editor.MsgSave})
			fmt.Fprintf(s.out, "Карта сохранена в слот %s\n", *slot)
			return nil
		}
	}
}
