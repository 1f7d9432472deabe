package main

import (
	"crypto/tls"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dockside/receiving/internal/certs"
	"github.com/dockside/receiving/internal/cli"
	"github.com/dockside/receiving/internal/common"
	"github.com/dockside/receiving/internal/webshell"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the browser front end",
		Long: `Serve the installable browser app from web.dir with a service worker generated
for the configured cache version, and proxy /api requests to the backend. Browsers only install the service worker
over HTTPS or on localhost, so pass --tls when tablets connect over the LAN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			app, err := webshell.New(webshell.Options{
				Policy:      cfg.Policy(),
				Logger:      slog.Default(),
				BackendURL:  cfg.Backend.URL,
				Dir:         cfg.Web.Dir,
				CORSOrigins: cfg.Web.CORSOrigins,
			})
			if err != nil {
				return err
			}

			scheme := "http"
			var cert *tls.Certificate
			if cfg.Web.TLS {
				store := certs.NewStore(cfg.Web.CertDir, certs.WithHosts(cfg.Web.TLSHosts...))
				c, err := store.Certificate()
				if err != nil {
					return common.NewUserError("Cannot prepare the HTTPS certificate", err)
				}
				cert, scheme = &c, "https"
				slog.Info("Using self-signed certificate", "cert", store.CertFile())
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Serving %s on %s://%s (cache %s)", cfg.Web.Dir, scheme, cfg.Web.Listen, cfg.Cache.Version)))
			return webshell.Serve(cmd.Context(), app, cfg.Web.Listen, cert)
		},
	}
	cmd.Flags().String("listen", "", "address to listen on")
	cmd.Flags().String("dir", "", "directory holding the browser assets")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed certificate")
	cmd.Flags().StringSlice("tls-host", nil, "extra host name or IP the certificate must cover")
	_ = viper.BindPFlag("web.listen", cmd.Flags().Lookup("listen"))
	_ = viper.BindPFlag("web.dir", cmd.Flags().Lookup("dir"))
	_ = viper.BindPFlag("web.tls", cmd.Flags().Lookup("tls"))
	_ = viper.BindPFlag("web.tls_hosts", cmd.Flags().Lookup("tls-host"))
	return cmd
}
