package gamebackend

import "time"

// Config holds the endpoints and credentials for the remote identity
// service and game backend.
type Config struct {
	// APIKey is the identity service web API key
	APIKey string

	// IdentityURL is the base URL of the identity REST API
	IdentityURL string

	// BaseURL is the base URL of the game backend's cloud functions
	BaseURL string

	// Cloud function names appended to BaseURL
	GetPlayerDataPath string
	GetAllCarsPath    string
	SavePlayerPath    string
	SaveCarPath       string

	// DeviceToken is sent as a device-identity header on vehicle saves.
	// Some backend deployments require it; leave empty otherwise.
	DeviceToken string

	// Timeouts per operation weight: fetches are light, saves heavier
	FetchTimeout time.Duration
	SaveTimeout  time.Duration
}

// DefaultConfig returns sensible defaults for the backend configuration.
// APIKey and BaseURL have no useful defaults and must be supplied.
func DefaultConfig() Config {
	return Config{
		IdentityURL:       "https://www.googleapis.com/identitytoolkit/v3/relyingparty",
		GetPlayerDataPath: "GetPlayerData",
		GetAllCarsPath:    "GetAllCars",
		SavePlayerPath:    "SavePlayerData",
		SaveCarPath:       "SaveCar",
		FetchTimeout:      15 * time.Second,
		SaveTimeout:       45 * time.Second,
	}
}
