// Package notify abstracts one-time code delivery behind a single Sender
// interface covering email, SMS and WhatsApp channels.
package notify
