package location

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"

	"github.com/authenticare/location-agent/internal/constants"
)

// SensorProvider reads position fixes from a GPS receiver connected via a
// serial port.
type SensorProvider struct {
	port       string        // Serial port to which the GPS device is connected
	baudRate   int           // Baud rate for the serial communication
	fixTimeout time.Duration // Bound on an individual watch fix

	mu        sync.Mutex
	watchPort *serial.Port // Port held open while a watch subscription is active
}

// NewSensorProvider creates a new SensorProvider for the given port and baud rate.
func NewSensorProvider(port string, baudRate int) *SensorProvider {
	return &SensorProvider{
		port:       port,
		baudRate:   baudRate,
		fixTimeout: constants.WatchFixTimeout,
	}
}

// GetLocation opens the serial port and blocks until a valid GGA fix is read
// or the context expires.
func (d *SensorProvider) GetLocation(ctx context.Context) (Sample, error) {
	s, err := d.open()
	if err != nil {
		return Sample{}, err
	}
	defer s.Close()

	type result struct {
		sample Sample
		err    error
	}
	resultCh := make(chan result, 1)

	go func() {
		sample, err := readFix(s)
		resultCh <- result{sample, err}
	}()

	select {
	case r := <-resultCh:
		return r.sample, r.err
	case <-ctx.Done():
		// Closing the port unblocks the reader goroutine.
		s.Close()
		return Sample{}, ctx.Err()
	}
}

// Watch keeps the serial port open and emits every valid GGA fix until the
// context is cancelled. A read that produces no fix within the fix timeout is
// treated as hung and the port is reopened.
func (d *SensorProvider) Watch(ctx context.Context) (<-chan Sample, error) {
	s, err := d.open()
	if err != nil {
		return nil, err
	}
	d.setWatchPort(s)

	samples := make(chan Sample)
	go d.runWatch(ctx, s, samples)
	return samples, nil
}

// runWatch forwards fixes from the reader goroutine, reopening the port when
// a fix does not arrive within the fix timeout.
func (d *SensorProvider) runWatch(ctx context.Context, s *serial.Port, samples chan<- Sample) {
	defer close(samples)

	fixes := d.readFixes(ctx, s)
	timer := time.NewTimer(d.fixTimeout)
	defer timer.Stop()

	for {
		select {
		case sample, ok := <-fixes:
			if !ok {
				if ctx.Err() != nil {
					return
				}
				// The port read ended outside of shutdown; reopen and
				// resume. A failed reopen ends the subscription.
				reopened, err := d.open()
				if err != nil {
					return
				}
				d.setWatchPort(reopened)
				s = reopened
				fixes = d.readFixes(ctx, s)
				continue
			}

			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(d.fixTimeout)

			select {
			case samples <- sample:
			case <-ctx.Done():
				s.Close()
				return
			}
		case <-timer.C:
			// No fix within the bound; closing the port unblocks the
			// hung read and the loop above reopens it.
			s.Close()
			timer.Reset(d.fixTimeout)
		case <-ctx.Done():
			s.Close()
			return
		}
	}
}

// readFixes streams valid GGA fixes from the port until it is closed.
func (d *SensorProvider) readFixes(ctx context.Context, s *serial.Port) <-chan Sample {
	fixes := make(chan Sample)

	go func() {
		defer close(fixes)

		scanner := bufio.NewScanner(s)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "$GPGGA") {
				continue
			}
			sentence, err := nmea.Parse(line)
			if err != nil {
				continue
			}
			gga, ok := sentence.(nmea.GGA)
			if !ok {
				continue
			}
			sample := Sample{
				Latitude:  gga.Latitude,
				Longitude: gga.Longitude,
				Accuracy:  float64(gga.HDOP), // Use HDOP as a proxy for accuracy
				Timestamp: time.Now(),
			}
			select {
			case fixes <- sample:
			case <-ctx.Done():
				return
			}
		}
	}()

	return fixes
}

// Close releases the serial port held by an active watch, if any.
func (d *SensorProvider) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.watchPort != nil {
		err := d.watchPort.Close()
		d.watchPort = nil
		return err
	}
	return nil
}

func (d *SensorProvider) open() (*serial.Port, error) {
	return serial.OpenPort(&serial.Config{Name: d.port, Baud: d.baudRate})
}

func (d *SensorProvider) setWatchPort(s *serial.Port) {
	d.mu.Lock()
	d.watchPort = s
	d.mu.Unlock()
}

// readFix scans serial output for the first valid GGA sentence.
func readFix(s *serial.Port) (Sample, error) {
	scanner := bufio.NewScanner(s)
	for scanner.Scan() {
		line := scanner.Text()                 // Read a line from the GPS output
		if strings.HasPrefix(line, "$GPGGA") { // Check for GGA sentences
			sentence, err := nmea.Parse(line)
			if err != nil {
				return Sample{}, err
			}

			if gga, ok := sentence.(nmea.GGA); ok {
				return Sample{
					Latitude:  gga.Latitude,
					Longitude: gga.Longitude,
					Accuracy:  float64(gga.HDOP),
					Timestamp: time.Now(),
				}, nil
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return Sample{}, err
	}

	return Sample{}, errors.New("no valid GPS data found")
}
