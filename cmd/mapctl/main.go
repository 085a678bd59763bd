// mapctl управляет сохранёнными изометрическими картами: генерирует их,
// меняет рельеф и постройки, рисует превью.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/annel0/isomap/internal/config"
	"github.com/annel0/isomap/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "Путь к YAML-конфигурации (или ISOMAP_CONFIG)")
	flag.Usage = func() { usage(os.Stderr) }
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	logging.Configure(cfg.Logging.Dir, level)
	if err := logging.InitDefaultLogger("mapctl"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(cfg, os.Stdout)
	if err != nil {
		logging.Error("Не удалось подготовить окружение: %v", err)
		os.Exit(1)
	}

	err = run(ctx, s, flag.Args())
	s.Close()
	if err != nil {
		logging.Error("%v", err)
		os.Exit(1)
	}
}

// run выполняет подкоманду args[0] с остальными аргументами
func run(ctx context.Context, s *session, args []string) error {
	if len(args) == 0 {
		usage(s.out)
		return fmt.Errorf("не указана команда")
	}

	cmd, ok := commands[args[0]]
	if !ok {
		usage(s.out)
		return fmt.Errorf("неизвестная команда %q", args[0])
	}

	logging.Debug("Команда %s %v", args[0], args[1:])
	return cmd.run(ctx, s, args[1:])
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Использование: mapctl [-config file] <команда> [флаги]")
	fmt.Fprintln(w, "Команды:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].usage)
	}
}
