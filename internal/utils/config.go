package utils

import (
	"time"

	"github.com/authenticare/location-agent/internal/constants"
	"github.com/authenticare/location-agent/pkg/file"
)

// Config represents the structure of the configuration file.
type Config struct {
	API struct {
		BaseURL string        `yaml:"base_url"` // AuthentiCare backend base URL
		Timeout time.Duration `yaml:"timeout"`  // HTTP request timeout
	} `yaml:"api"`

	MQTT struct {
		Broker        string `yaml:"broker"`         // MQTT broker address for alert push
		ClientID      string `yaml:"client_id"`      // MQTT client ID
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate
	} `yaml:"mqtt"`

	Identity struct {
		IdentityFile string `yaml:"identity_file"` // Path to the user/agent identity file
	} `yaml:"identity"`

	Security struct {
		TokenFile  string `yaml:"token_file"`   // Path to the encrypted token file
		AESKeyFile string `yaml:"aes_key_file"` // Path to the AES key file
	} `yaml:"security"`

	Notifications struct {
		Enabled bool `yaml:"enabled"` // User granted notification permission
	} `yaml:"notifications"`

	Location struct {
		Source            string        `yaml:"source"`          // Position source: "sensor" or "network"
		MapsAPIKey        string        `yaml:"maps_api_key"`    // Google Maps API key (network source)
		GPSDevicePort     string        `yaml:"gps_device_port"` // UNIX port where the GPS sensor is mounted
		GPSDeviceBaudRate int           `yaml:"gps_baud_rate"`   // Baud rate for the GPS sensor
		ModemIndex        int           `yaml:"modem_index"`     // ModemManager modem index for cell lookup
		WatchInterval     time.Duration `yaml:"watch_interval"`  // Re-sample cadence for network watch
	} `yaml:"location"`

	Services struct {
		Tracking struct {
			Enabled        bool          `yaml:"enabled"`          // Enable/disable tracking service
			Interval       time.Duration `yaml:"interval"`         // Fallback re-check interval
			ThresholdKm    float64       `yaml:"threshold_km"`     // Significant movement threshold
			CacheFile      string        `yaml:"cache_file"`       // Path to the last-known-location cache
			NotifyOnTravel bool          `yaml:"notify_on_travel"` // Notify the user when travel is detected
		} `yaml:"tracking"`

		Heartbeat struct {
			Enabled  bool          `yaml:"enabled"`  // Enable/disable heartbeat service
			Interval time.Duration `yaml:"interval"` // Interval between heartbeats
		} `yaml:"heartbeat"`

		Alerts struct {
			Enabled     bool   `yaml:"enabled"`      // Enable/disable environmental alert listener
			TopicPrefix string `yaml:"topic_prefix"` // MQTT topic prefix for per-user alerts
			QOS         int    `yaml:"qos"`          // MQTT QoS level for alert messages
		} `yaml:"alerts"`

		Archive struct {
			Enabled        bool          `yaml:"enabled"`         // Enable/disable history archiver
			JournalFile    string        `yaml:"journal_file"`    // Path to the sample journal
			RotateInterval time.Duration `yaml:"rotate_interval"` // Journal rotation interval
			Endpoint       string        `yaml:"endpoint"`        // Object storage endpoint
			Bucket         string        `yaml:"bucket"`          // Object storage bucket
			AccessKey      string        `yaml:"access_key"`      // Object storage access key
			SecretKeyFile  string        `yaml:"secret_key_file"` // Path to the object storage secret key
			UseSSL         bool          `yaml:"use_ssl"`         // Use TLS for object storage
		} `yaml:"archive"`

		UpdateCheck struct {
			Enabled  bool          `yaml:"enabled"`  // Enable/disable agent update check
			Interval time.Duration `yaml:"interval"` // Interval between version checks
		} `yaml:"update_check"`
	} `yaml:"services"`
}

// LoadConfig loads the YAML configuration from the specified file and fills
// in defaults for unset tracking knobs.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	err := fileClient.ReadYamlFile(filename, &config)
	if err != nil {
		return nil, err
	}

	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(config *Config) {
	if config.API.Timeout == 0 {
		config.API.Timeout = 15 * time.Second
	}
	if config.Services.Tracking.Interval == 0 {
		config.Services.Tracking.Interval = constants.DefaultPollInterval
	}
	if config.Services.Tracking.ThresholdKm == 0 {
		config.Services.Tracking.ThresholdKm = constants.DefaultThresholdKm
	}
	if config.Location.WatchInterval == 0 {
		config.Location.WatchInterval = 30 * time.Second
	}
}
