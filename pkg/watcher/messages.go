package watcher

import "fmt"

// ListingMessage is the notification sent for every new contract
func ListingMessage(exchange, symbol string) string {
	return fmt.Sprintf("New futures pair on %s: %s", exchange, symbol)
}

// AcknowledgementMessage answers a subscriber's /start
func AcknowledgementMessage(exchange string) string {
	return fmt.Sprintf("Bot started and tracking new futures listings on %s!", exchange)
}

// UnsubscribedMessage answers a subscriber's /stop
func UnsubscribedMessage(exchange string) string {
	return fmt.Sprintf("You will no longer receive new futures listings from %s.", exchange)
}
