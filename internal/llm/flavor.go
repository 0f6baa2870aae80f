// Flavor-text generation for negotiations and vendor outreach.
// Every function takes a deterministic fallback and returns it on any
// failure — generated text is cosmetic, never authoritative.
package llm

import (
	"fmt"
	"strings"
)

const vendorSystem = `You are a wholesale supplier in a small-town laundromat economy. Write in the voice of a busy sales rep: short, colloquial, a little salesy. One or two sentences. Never mention prices, discounts, or terms beyond what the prompt states. Do not break character.`

// NegotiationLine generates a vendor's spoken response to a price
// negotiation. Returns fallback if the client is disabled or the call fails.
func NegotiationLine(client *Client, vendorName, item, agentName string, success bool, fallback string) string {
	if !client.Enabled() {
		return fallback
	}

	outcome := "You are declining their request for a better price, politely but firmly."
	if success {
		outcome = "You are agreeing to shave a little off the price for them."
	}
	prompt := fmt.Sprintf(
		"You represent %s. %s, a laundromat owner you do business with, is haggling over the price of %s. %s\nFactual outcome (do not contradict): %s",
		vendorName, agentName, item, outcome, fallback,
	)

	text, err := client.Complete(vendorSystem, prompt, 120)
	if err != nil || strings.TrimSpace(text) == "" {
		return fallback
	}
	return strings.TrimSpace(text)
}

// OutreachLine generates proactive vendor-to-customer marketing copy.
// Returns fallback if the client is disabled or the call fails.
func OutreachLine(client *Client, vendorName, pitch, fallback string) string {
	if !client.Enabled() {
		return fallback
	}

	prompt := fmt.Sprintf(
		"You represent %s. Write a short outreach note to a laundromat owner on your books. The factual pitch (do not contradict or extend): %s",
		vendorName, pitch,
	)

	text, err := client.Complete(vendorSystem, prompt, 120)
	if err != nil || strings.TrimSpace(text) == "" {
		return fallback
	}
	return strings.TrimSpace(text)
}
