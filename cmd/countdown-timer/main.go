// Command countdown-timer runs the three-button countdown timer appliance on a
// serial console, with optional MQTT events and an HTTP status page.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/sweeney/countdown-timer/internal/config"
	"github.com/sweeney/countdown-timer/internal/console"
	"github.com/sweeney/countdown-timer/internal/fsm"
	"github.com/sweeney/countdown-timer/internal/gpio"
	"github.com/sweeney/countdown-timer/internal/logger"
	"github.com/sweeney/countdown-timer/internal/logic"
	"github.com/sweeney/countdown-timer/internal/mqtt"
	"github.com/sweeney/countdown-timer/internal/pwm"
	"github.com/sweeney/countdown-timer/internal/status"
	"github.com/sweeney/countdown-timer/internal/web"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

// simulatedADC is the pot position the virtual panel starts at.
const simulatedADC = 512

func main() {
	cfg, err := config.Load(os.Args[0], os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	log := logger.Get(cfg.LogLevel)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatalw("fatal", "err", err)
	}
}

// hardware is the set of devices the daemon drives, real or simulated.
type hardware struct {
	fsm.Hardware
	LED2  pwm.Pin
	Panel *gpio.Panel // nil unless simulating

	closers []io.Closer
}

func (h *hardware) Close() {
	for i := len(h.closers) - 1; i >= 0; i-- {
		h.closers[i].Close()
	}
}

func openHardware(cfg config.Config, duty *pwm.Cell) (*hardware, error) {
	h := &hardware{}
	h.Duty = duty

	if cfg.Simulate {
		h.Panel = gpio.NewPanel(simulatedADC)
		h.Buttons = h.Panel
		h.Analog = h.Panel
		h.LED0 = &gpio.FakeOutput{}
		h.LED1 = &gpio.FakeOutput{}
		h.LED2 = &gpio.FakeOutput{}
		return h, nil
	}

	reader, err := gpio.NewRealReader(cfg.Chip, cfg.Pins)
	if err != nil {
		return nil, fmt.Errorf("init buttons: %w", err)
	}
	h.closers = append(h.closers, reader)
	h.Buttons = reader

	var leds [3]*gpio.RealOutput
	for i, line := range []int{cfg.Pins.LED0, cfg.Pins.LED1, cfg.Pins.LED2} {
		out, err := gpio.NewRealOutput(cfg.Chip, line)
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("init led%d: %w", i, err)
		}
		h.closers = append(h.closers, out)
		leds[i] = out
	}
	h.LED0, h.LED1, h.LED2 = leds[0], leds[1], leds[2]

	adc, err := gpio.NewIIOAnalog(cfg.ADCPath, cfg.ADCBits)
	if err != nil {
		h.Close()
		return nil, fmt.Errorf("init adc: %w", err)
	}
	h.Analog = adc
	return h, nil
}

func run(cfg config.Config, log *logger.Logger) error {
	duty := &pwm.Cell{}
	hw, err := openHardware(cfg, duty)
	if err != nil {
		return err
	}
	defer hw.Close()

	if cfg.PrintState {
		return printState(os.Stdout, hw.Buttons, hw.Analog)
	}

	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = mqtt.NopPublisher{}
	if cfg.Broker != "" {
		p, err := mqtt.NewRealPublisher(cfg.Broker, cfg.ClientID, log)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher = p
	}
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.Config{
		PWMTickUs:   cfg.PWMTick.Microseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
		Simulate:    cfg.Simulate,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	publishLifecycle(publisher, publisher, tracker, log, "STARTUP", "")

	restore, err := makeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	defer restore()

	con := console.New(os.Stdout, cfg.Echo)
	interrupt := make(chan struct{}, 1)
	con.OnInterrupt(func() {
		select {
		case interrupt <- struct{}{}:
		default:
		}
	})
	go func() {
		if err := con.Listen(os.Stdin); err != nil && !errors.Is(err, io.EOF) {
			log.Warnw("console input closed", "err", err)
		}
	}()

	ctrl := fsm.New(hw.Hardware, con, log, fsm.WithBeforeRead(func(st fsm.Status) {
		tracker.Update(st)
		tracker.SetMQTTConnected(publisher.IsConnected())
	}))
	gen := pwm.NewGenerator(duty, hw.LED2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)
	reason := awaitShutdown(ctx, sig, interrupt, cancel, log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(cfg.PWMTick)
		defer ticker.Stop()
		gen.Run(gctx, ticker.C)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(ctrl.Period())
		defer ticker.Stop()
		return runLoop(gctx, loopDeps{
			ctrl:       ctrl,
			publisher:  publisher,
			mqttStatus: publisher,
			tracker:    tracker,
			heartbeat:  cfg.Heartbeat,
			now:        time.Now,
			tick:       ticker.C,
			reset:      ticker.Reset,
			log:        log,
		})
	})

	if cfg.HTTPAddr != "" {
		var panel web.Panel
		if hw.Panel != nil {
			panel = hw.Panel
		}
		srv := web.New(cfg.HTTPAddr, tracker, panel, log)
		g.Go(func() error {
			log.Infow("http status server listening", "addr", cfg.HTTPAddr)
			if err := srv.Run(gctx); err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
	}

	log.Infow("started",
		"simulate", cfg.Simulate,
		"broker", cfg.Broker,
		"http", cfg.HTTPAddr,
		"heartbeat", cfg.Heartbeat,
		"pwm_tick", cfg.PWMTick)

	err = g.Wait()

	why := "UNKNOWN"
	select {
	case why = <-reason:
	default:
	}
	publishLifecycle(publisher, publisher, tracker, log, "SHUTDOWN", why)
	return err
}

// loopDeps collects what the control loop needs.
type loopDeps struct {
	ctrl       *fsm.Controller
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	heartbeat  time.Duration
	now        func() time.Time
	tick       <-chan time.Time
	reset      func(time.Duration)
	log        *logger.Logger
}

// runLoop is the single control loop. Each tick runs one controller step,
// publishes its events, refreshes the tracker and re-arms the ticker with the
// period of the (possibly new) state. It returns nil when ctx is cancelled.
func runLoop(ctx context.Context, d loopDeps) error {
	hb := logic.NewHeartbeat(d.now())
	period := d.ctrl.Period()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.tick:
		}

		t := d.now()
		events, err := d.ctrl.Step(ctx, t)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("controller step: %w", err)
		}

		for _, event := range events {
			if event.Type != logic.EventTick {
				d.log.Debugw("event", "type", event.Type, "state", event.State, "remaining", event.Remaining.String())
			}
			if err := d.publisher.Publish(event); err != nil {
				d.log.Warnw("publish error", "event", event.Type, "err", err)
			}
		}

		d.tracker.Update(d.ctrl.Status())
		if d.mqttStatus != nil {
			d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
		}

		if beat := hb.Check(t, d.heartbeat, d.ctrl.Counts()); beat != nil {
			d.log.Infow("heartbeat",
				"uptime", beat.Uptime,
				"started", beat.Counts.Started,
				"completed", beat.Counts.Completed,
				"aborted", beat.Counts.Aborted)
			// Refresh network info for heartbeat
			if net := readNetworkInfo(); net != nil {
				d.tracker.SetNetwork(net)
			}
			snap := d.tracker.Snapshot()
			event := mqtt.SystemEvent{
				Timestamp:  beat.Timestamp,
				Event:      "HEARTBEAT",
				RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
			}
			if err := d.publisher.PublishSystem(event); err != nil {
				d.log.Warnw("heartbeat publish error", "err", err)
			}
		}

		if p := d.ctrl.Period(); p != period {
			period = p
			d.reset(p)
		}
	}
}

// publishLifecycle publishes a retained STARTUP or SHUTDOWN event carrying a
// full status snapshot.
func publishLifecycle(pub mqtt.Publisher, conn mqtt.ConnectionStatus, tracker *status.Tracker, log *logger.Logger, event, reason string) {
	if conn != nil {
		tracker.SetMQTTConnected(conn.IsConnected())
	}
	snap := tracker.Snapshot()
	err := pub.PublishSystem(mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	})
	if err != nil {
		log.Warnw("failed to publish lifecycle event", "event", event, "err", err)
		return
	}
	log.Infow("published lifecycle event", "event", event)
}

// awaitShutdown cancels on the first signal or console Ctrl-C and reports the
// reason on the returned channel.
func awaitShutdown(ctx context.Context, sig <-chan os.Signal, interrupt <-chan struct{}, cancel context.CancelFunc, log *logger.Logger) <-chan string {
	reason := make(chan string, 1)
	go func() {
		select {
		case s := <-sig:
			log.Infow("shutting down", "signal", s)
			reason <- signalName(s)
		case <-interrupt:
			// A raw terminal delivers Ctrl-C as a byte instead of SIGINT.
			log.Infow("shutting down", "signal", "console interrupt")
			reason <- "SIGINT"
		case <-ctx.Done():
			return
		}
		cancel()
	}()
	return reason
}

// makeRaw switches fd to raw mode when it is a terminal, so command keys
// reach the console one at a time and only the console echoes them. The
// returned func restores the previous mode.
func makeRaw(fd int) (func(), error) {
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw terminal: %w", err)
	}
	return func() { term.Restore(fd, old) }, nil
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

// printState writes one reading of the buttons and the pot.
func printState(w io.Writer, buttons fsm.Buttons, adc gpio.Analog) error {
	s, err := buttons.Read()
	if err != nil {
		return fmt.Errorf("read buttons: %w", err)
	}
	v, err := adc.ReadAnalog()
	if err != nil {
		return fmt.Errorf("read adc: %w", err)
	}
	fmt.Fprintf(w, "PB1: %s, PB2: %s, PB3: %s, ADC: %d\n",
		pressedString(s.PB1), pressedString(s.PB2), pressedString(s.PB3), v)
	return nil
}

func pressedString(on bool) string {
	if on {
		return "PRESSED"
	}
	return "RELEASED"
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
