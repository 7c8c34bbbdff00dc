package topics

// Session relay topics. The transport publishes inbound participant events
// and lifecycle notifications here; the router consumes them.

var (
	// TopicSessionInbound carries every payload event (chat and typing) from
	// connected participants. Chat and typing deliberately share one topic:
	// the in-memory bus preserves order per topic, and a sender's
	// typing:false followed by its chat message must reach recipients in
	// that order.
	TopicSessionInbound = Define(
		"session.events.inbound",
		"Inbound participant events (chat and typing) awaiting fan-out",
		`{"kind":"chat","body":"hi"}`,
	)

	// TopicClientConnected is published when a participant's channel is
	// established and registered.
	TopicClientConnected = Define(
		"session.client.connected",
		"Published when a participant channel is established",
		`{"participantId":"d2f1..."}`,
	)

	// TopicClientDisconnected is published when a participant's channel is
	// lost, for any reason.
	TopicClientDisconnected = Define(
		"session.client.disconnected",
		"Published when a participant channel is lost",
		`{"participantId":"d2f1...","reason":"client_closed"}`,
	)
)

// RegisterSessionTopics registers the relay's topics with the given registry.
// Idempotent across repeated calls.
func RegisterSessionTopics(r *Registry) error {
	for _, t := range []Topic{
		TopicSessionInbound,
		TopicClientConnected,
		TopicClientDisconnected,
	} {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
