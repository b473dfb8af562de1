package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/podcastgen/internal/app"
	"github.com/nikhilbhutani/podcastgen/internal/cache"
	"github.com/nikhilbhutani/podcastgen/internal/config"
	"github.com/nikhilbhutani/podcastgen/internal/podcast"
	"github.com/nikhilbhutani/podcastgen/internal/voices"
)

// catalogStore shares the API's Redis cache when it is reachable so both
// see the same catalog; otherwise the cache lives for this process only.
func catalogStore(ctx context.Context, cfg config.RedisConfig) cache.Store {
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Debug("redis unavailable, caching voices in memory", "error", err)
		rdb.Close()
		return cache.NewMemory(nil)
	}
	return cache.NewCache(rdb, "podcastgen:")
}

func newVoicesCmd(root *rootOptions) *cobra.Command {
	var (
		scene   string
		refresh bool
	)
	cmd := &cobra.Command{
		Use:   "voices",
		Short: "List available voices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			var lister voices.Lister
			if mm := app.NewMiniMax(root.cfg.MiniMax); mm != nil {
				lister = mm.Voice
			}
			catalog := voices.NewCatalog(lister, catalogStore(ctx, root.cfg.Redis), voices.WithTTL(root.cfg.MiniMax.VoiceTTL))

			var (
				listing *voices.Listing
				err     error
			)
			if refresh {
				listing, err = catalog.Refresh(ctx)
			} else {
				listing, err = catalog.List(ctx)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderVoices(listing))

			if scene != "" {
				s, err := podcast.ParseScene(scene)
				if err != nil {
					return err
				}
				rec := voices.Recommended(s, len(s.DefaultVoices()))
				printInfo("Recommended for %s: %s", s, strings.Join(rec, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&scene, "scene", "s", "", "also show recommendations for this scene")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cached catalog")
	return cmd
}

func newEstimateCmd() *cobra.Command {
	var minutes int
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate generation time for a podcast length",
		RunE: func(cmd *cobra.Command, args []string) error {
			if minutes < podcast.MinDuration || minutes > podcast.MaxDuration {
				return fmt.Errorf("duration must be between %d and %d minutes", podcast.MinDuration, podcast.MaxDuration)
			}
			d := podcast.EstimateGenerationTime(minutes)
			fmt.Fprintf(cmd.OutOrStdout(), "%d-minute podcast: %s (%s)\n", minutes, podcast.FormatEstimate(d), d)
			return nil
		},
	}
	cmd.Flags().IntVarP(&minutes, "duration", "d", 5, "target length in minutes")
	return cmd
}
