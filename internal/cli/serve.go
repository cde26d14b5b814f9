package cli

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"faqbot/internal/adapter/httpapi"
	"faqbot/internal/adapter/metrics"
	"faqbot/internal/usecase"
)

var (
	serveAddr string
	serveSeed uint64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve POST /get_answer, GET /healthz and GET /metrics, plus the static
frontend from server.static_dir when configured.

Examples:
  faqbot serve
  faqbot serve --addr :9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().Uint64Var(&serveSeed, "seed", 0, "seed for polite prefix selection (0 = random)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	m := metrics.New()
	eng, err := loadEngine(cfg, GetRootDir(), m)
	if err != nil {
		return err
	}

	var prefix usecase.PrefixChooser
	if serveSeed != 0 {
		prefix = usecase.RandomPrefix(usecase.DefaultPrefixes, rand.New(rand.NewPCG(serveSeed, serveSeed)))
	}
	chat, cleanup, err := newChat(cfg, eng, prefix)
	if err != nil {
		return err
	}
	defer cleanup()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	opts := []httpapi.Option{
		httpapi.WithMetrics(m),
		httpapi.WithSessionCookie(cfg.Server.SessionCookie),
	}
	if cfg.Server.StaticDir != "" {
		opts = append(opts, httpapi.WithStaticDir(resolvePath(cfg.Server.StaticDir)))
	}

	gin.SetMode(gin.ReleaseMode)
	server := httpapi.NewServer(chat, eng.index.Len(), opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Serving %d FAQ entries on %s\n", eng.index.Len(), addr)
	return server.ListenAndServe(ctx, addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
}
