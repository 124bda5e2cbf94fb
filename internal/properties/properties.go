package properties

import (
	"os"

	"github.com/joho/godotenv"
)

// Load reads the optional .env in the working directory or the repo root.
// Missing files are fine; command line flags always win over env defaults.
func Load() {
	if err := godotenv.Load(".env"); err != nil {
		godotenv.Load("../.env")
	}
}

func DiscordWebhookURL() string {
	return os.Getenv("DISCORD_WEBHOOK_URL")
}

// DataRoot is the default parent directory for relative -in/-out paths in
// batch scripts. Empty when unset.
func DataRoot() string {
	return os.Getenv("DATA_ROOT")
}
