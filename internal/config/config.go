// Package config loads the daemon configuration from flags and TIMER_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/sweeney/countdown-timer/internal/gpio"
	"github.com/sweeney/countdown-timer/internal/logger"
)

// EnvPrefix is prepended to every environment override, e.g. TIMER_BROKER.
const EnvPrefix = "TIMER"

// Config is the validated daemon configuration.
type Config struct {
	LogLevel   string
	Simulate   bool
	PrintState bool
	Echo       bool

	Chip    string
	Pins    gpio.Pins
	ADCPath string
	ADCBits uint
	PWMTick time.Duration

	// Broker and HTTPAddr are empty unless configured; empty disables them.
	Broker    string
	ClientID  string
	Heartbeat time.Duration
	HTTPAddr  string
}

// Flag names. Environment variables use the upper-cased name with '-'
// replaced by '_'.
const (
	keyLogLevel   = "log-level"
	keySimulate   = "simulate"
	keyPrintState = "print-state"
	keyEcho       = "echo"
	keyChip       = "chip"
	keyPinPB1     = "pin-pb1"
	keyPinPB2     = "pin-pb2"
	keyPinPB3     = "pin-pb3"
	keyPinLED0    = "pin-led0"
	keyPinLED1    = "pin-led1"
	keyPinLED2    = "pin-led2"
	keyADCPath    = "adc-path"
	keyADCBits    = "adc-bits"
	keyPWMTick    = "pwm-tick"
	keyBroker     = "broker"
	keyClientID   = "client-id"
	keyHeartbeat  = "heartbeat"
	keyHTTP       = "http"
)

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String(keyLogLevel, logger.InfoLevel, "Log level (debug, info, warn, error)")
	fs.Bool(keySimulate, false, "Use the virtual panel instead of GPIO and ADC hardware")
	fs.Bool(keyPrintState, false, "Print button and ADC state and exit")
	fs.Bool(keyEcho, true, "Echo console input during time entry")
	fs.String(keyChip, "gpiochip0", "GPIO character device")
	fs.Int(keyPinPB1, gpio.DefaultPinPB1, "BCM line for PB1")
	fs.Int(keyPinPB2, gpio.DefaultPinPB2, "BCM line for PB2")
	fs.Int(keyPinPB3, gpio.DefaultPinPB3, "BCM line for PB3")
	fs.Int(keyPinLED0, gpio.DefaultPinLED0, "BCM line for LED0")
	fs.Int(keyPinLED1, gpio.DefaultPinLED1, "BCM line for LED1")
	fs.Int(keyPinLED2, gpio.DefaultPinLED2, "BCM line for the LED2 indicator")
	fs.String(keyADCPath, gpio.DefaultIIOPath, "IIO sysfs file for the potentiometer")
	fs.Uint(keyADCBits, 12, "Resolution of the IIO channel in bits")
	fs.Duration(keyPWMTick, time.Millisecond, "PWM generator tick")
	fs.String(keyBroker, "", "MQTT broker address (empty to disable)")
	fs.String(keyClientID, "countdown-timer", "MQTT client ID")
	fs.Duration(keyHeartbeat, 15*time.Minute, "Heartbeat interval (0 to disable)")
	fs.String(keyHTTP, "", "HTTP status address (empty to disable)")
	return fs
}

// Load parses args (without the program name) and applies environment
// overrides. Flags given on the command line win over the environment.
func Load(name string, args []string) (Config, error) {
	fs := newFlagSet(name)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	cfg := Config{
		LogLevel:   v.GetString(keyLogLevel),
		Simulate:   v.GetBool(keySimulate),
		PrintState: v.GetBool(keyPrintState),
		Echo:       v.GetBool(keyEcho),
		Chip:       v.GetString(keyChip),
		Pins: gpio.Pins{
			PB1:  v.GetInt(keyPinPB1),
			PB2:  v.GetInt(keyPinPB2),
			PB3:  v.GetInt(keyPinPB3),
			LED0: v.GetInt(keyPinLED0),
			LED1: v.GetInt(keyPinLED1),
			LED2: v.GetInt(keyPinLED2),
		},
		ADCPath:   v.GetString(keyADCPath),
		ADCBits:   v.GetUint(keyADCBits),
		PWMTick:   v.GetDuration(keyPWMTick),
		Broker:    v.GetString(keyBroker),
		ClientID:  v.GetString(keyClientID),
		Heartbeat: v.GetDuration(keyHeartbeat),
		HTTPAddr:  v.GetString(keyHTTP),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if !logger.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("%s: unknown level %q", keyLogLevel, c.LogLevel))
	}
	if c.PWMTick <= 0 {
		errs = append(errs, fmt.Errorf("%s: must be positive, got %v", keyPWMTick, c.PWMTick))
	}
	if c.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("%s: must not be negative, got %v", keyHeartbeat, c.Heartbeat))
	}
	if !c.Simulate && (c.ADCBits < 10 || c.ADCBits > 16) {
		errs = append(errs, fmt.Errorf("%s: must be between 10 and 16, got %d", keyADCBits, c.ADCBits))
	}
	if c.Broker != "" && c.ClientID == "" {
		errs = append(errs, fmt.Errorf("%s: required when %s is set", keyClientID, keyBroker))
	}

	seen := make(map[int]string)
	for _, p := range []struct {
		name string
		line int
	}{
		{keyPinPB1, c.Pins.PB1},
		{keyPinPB2, c.Pins.PB2},
		{keyPinPB3, c.Pins.PB3},
		{keyPinLED0, c.Pins.LED0},
		{keyPinLED1, c.Pins.LED1},
		{keyPinLED2, c.Pins.LED2},
	} {
		if p.line < 0 {
			errs = append(errs, fmt.Errorf("%s: negative line %d", p.name, p.line))
			continue
		}
		if other, ok := seen[p.line]; ok {
			errs = append(errs, fmt.Errorf("%s: line %d already used by %s", p.name, p.line, other))
			continue
		}
		seen[p.line] = p.name
	}
	return errors.Join(errs...)
}
