// Command fetchall fetches every URL given on the command line, concurrently,
// and reports how long the batch took next to an estimate of how long the
// same fetches would have taken one after another.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/b97tsk/await"
)

type fetchResult struct {
	url      string
	bytes    int64
	duration time.Duration
}

func main() {
	var (
		concurrency = flag.Int64("c", 4, "maximum number of fetches in flight")
		timeout     = flag.Duration("timeout", 30*time.Second, "timeout per attempt")
		tries       = flag.Uint("tries", 3, "attempts per URL")
		rps         = flag.Float64("rate", 0, "requests per second (0 = unlimited)")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		logger = logger.Level(zerolog.InfoLevel)
	}

	urls := flag.Args()
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: fetchall [flags] url...")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := rate.NewLimiter(rate.Inf, 1)
	if *rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(*rps), 1)
	}

	client := &http.Client{}

	fetch := func(url string) await.Func[fetchResult] {
		log := logger.With().Str("id", uuid.NewString()).Str("url", url).Logger()
		f := func(ctx context.Context) (fetchResult, error) {
			if err := limiter.Wait(ctx); err != nil {
				return fetchResult{}, err
			}
			start := time.Now()
			n, err := fetchOne(ctx, client, url)
			d := time.Since(start)
			if err != nil {
				log.Warn().Err(err).Dur("elapsed", d).Msg("fetch failed")
				return fetchResult{}, fmt.Errorf("fetch %s: %w", url, err)
			}
			log.Debug().Int64("bytes", n).Dur("elapsed", d).Msg("fetched")
			return fetchResult{url: url, bytes: n, duration: d}, nil
		}
		return await.WithRetry(*tries, time.Second, await.WithTimeout(*timeout, f))
	}

	funcs := func(yield func(await.Func[fetchResult]) bool) {
		for _, u := range urls {
			if !yield(fetch(u)) {
				return
			}
		}
	}

	start := time.Now()
	var bytes int64
	var serial time.Duration
	failed := 0
	for res, err := range await.MergeSeq(ctx, *concurrency, funcs) {
		if err != nil {
			failed++
			continue
		}
		logger.Info().Str("url", res.url).Int64("bytes", res.bytes).Dur("took", res.duration).Msg("done")
		bytes += res.bytes
		serial += res.duration
	}
	elapsed := time.Since(start)

	logger.Info().
		Int("urls", len(urls)).
		Int("failed", failed).
		Int64("bytes", bytes).
		Dur("elapsed", elapsed).
		Dur("serial_estimate", serial).
		Msg("all fetches settled")

	if failed != 0 {
		os.Exit(1)
	}
}

func fetchOne(ctx context.Context, client *http.Client, url string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		err := fmt.Errorf("unexpected status %s", resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return 0, backoff.Permanent(err) // Retrying these never helps.
		}
		return 0, err
	}
	return io.Copy(io.Discard, resp.Body)
}
