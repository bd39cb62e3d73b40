// Command sse_load opens many concurrent connections to the papertrader event
// stream and optionally places orders to generate trade traffic.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type counters struct {
	connected   atomic.Int64
	connectErrs atomic.Int64
	streamErrs  atomic.Int64
	ticks       atomic.Int64
	trades      atomic.Int64
	resets      atomic.Int64
	orders      atomic.Int64
	rejected    atomic.Int64
}

func (c *counters) countEvent(name string) {
	switch name {
	case "tick":
		c.ticks.Add(1)
	case "trade":
		c.trades.Add(1)
	case "reset":
		c.resets.Add(1)
	}
}

func (c *counters) fields() []zap.Field {
	return []zap.Field{
		zap.Int64("connected", c.connected.Load()),
		zap.Int64("connect_errs", c.connectErrs.Load()),
		zap.Int64("stream_errs", c.streamErrs.Load()),
		zap.Int64("ticks", c.ticks.Load()),
		zap.Int64("trades", c.trades.Load()),
		zap.Int64("resets", c.resets.Load()),
		zap.Int64("orders", c.orders.Load()),
		zap.Int64("rejected", c.rejected.Load()),
	}
}

func main() {
	var (
		baseURL       string
		connections   int
		testDuration  time.Duration
		rampUp        time.Duration
		orderInterval time.Duration
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "papertrader base URL")
	flag.IntVar(&connections, "conns", 1000, "number of concurrent stream connections")
	flag.DurationVar(&testDuration, "dur", 60*time.Second, "test duration (0 for until interrupted)")
	flag.DurationVar(&rampUp, "ramp", 0, "ramp-up duration (spread connection starts across this window)")
	flag.DurationVar(&orderInterval, "orders", 0, "place alternating buy/sell orders at this interval (0 disables)")
	flag.Parse()

	if connections <= 0 {
		log.Fatalf("invalid conns: %d", connections)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if rampUp == 0 && connections > 100 {
		// default ramp-up: 1 second per 500 connections
		rampUp = max(time.Duration(connections/500)*time.Second, time.Second)
		logger.Info("using default ramp-up", zap.Duration("ramp", rampUp))
	}

	baseURL = strings.TrimRight(baseURL, "/")
	logger.Info("starting stream load",
		zap.String("url", baseURL), zap.Int("conns", connections),
		zap.Duration("duration", testDuration), zap.Duration("ramp", rampUp))

	client := &http.Client{
		Transport: &http.Transport{
			MaxConnsPerHost:     connections + 100,
			MaxIdleConns:        connections + 100,
			MaxIdleConnsPerHost: connections + 100,
			DisableCompression:  true,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if testDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, testDuration)
		defer cancel()
	}

	stats := &counters{}
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				logger.Info("status", append(stats.fields(), zap.Duration("elapsed", time.Since(start).Truncate(time.Second)))...)
			}
		}
	})

	if orderInterval > 0 {
		g.Go(func() error {
			placeOrders(gctx, client, baseURL, orderInterval, stats)
			return nil
		})
	}

	var interval time.Duration
	if rampUp > 0 {
		interval = rampUp / time.Duration(connections)
	}

	for i := 0; i < connections; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-gctx.Done():
			case <-time.After(interval):
			}
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			stream(gctx, client, baseURL+"/api/stream", stats)
			return nil
		})
	}

	_ = g.Wait()

	elapsed := max(time.Since(start), time.Millisecond)
	total := stats.ticks.Load() + stats.trades.Load() + stats.resets.Load()
	fmt.Printf("done: connected=%d connect_errs=%d stream_errs=%d ticks=%d trades=%d resets=%d orders=%d rejected=%d elapsed=%s events/s=%.2f\n",
		stats.connected.Load(), stats.connectErrs.Load(), stats.streamErrs.Load(),
		stats.ticks.Load(), stats.trades.Load(), stats.resets.Load(),
		stats.orders.Load(), stats.rejected.Load(),
		elapsed.Truncate(time.Millisecond), float64(total)/elapsed.Seconds())

	if stats.connected.Load() == 0 {
		os.Exit(1)
	}
}

// stream reads one SSE connection until ctx is done, counting named events.
func stream(ctx context.Context, client *http.Client, url string, stats *counters) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		stats.connectErrs.Add(1)
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		stats.connectErrs.Add(1)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		stats.connectErrs.Add(1)
		return
	}

	stats.connected.Add(1)
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() == nil {
				stats.streamErrs.Add(1)
			}
			return
		}
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			stats.countEvent(strings.TrimSpace(name))
		}
	}
}

// placeOrders alternates one-lot buys and sells.
func placeOrders(ctx context.Context, client *http.Client, baseURL string, every time.Duration, stats *counters) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	sides := []string{"buy", "sell"}
	for n := 0; ; n++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/"+sides[n%2], strings.NewReader(`{"lots": 1}`))
		if err != nil {
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := client.Do(req)
		if err != nil {
			continue
		}
		_ = resp.Body.Close()

		stats.orders.Add(1)
		if resp.StatusCode == http.StatusUnprocessableEntity {
			stats.rejected.Add(1)
		}
	}
}
