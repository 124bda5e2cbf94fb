// Package notification posts run outcomes to a Discord webhook. Long batch
// runs live on shared machines; the webhook is how we find out a night run
// died without tailing logs.
package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/martianxiu/usgs-data-analysis/internal/properties"
)

const (
	colorGreen = 3066993
	colorRed   = 16711680
)

type discordMessage struct {
	Embeds []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

// SendRunSummary posts the batch summary. It is a no-op when no webhook URL
// is configured, so local runs stay quiet.
func SendRunSummary(description string, succeeded bool) error {
	url := properties.DiscordWebhookURL()
	if url == "" {
		return nil
	}

	title := "✅ Invalid-tile filter finished"
	embedColor := colorGreen
	if !succeeded {
		title = "🚨 Invalid-tile filter failed"
		embedColor = colorRed
	}

	payload, err := json.Marshal(discordMessage{
		Embeds: []discordEmbed{{Title: title, Description: description, Color: embedColor}},
	})
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discord webhook returned status %d", resp.StatusCode)
	}
	return nil
}
