package observer

import "go.opentelemetry.io/otel/attribute"

// Attribute keys shared across spans, metrics, and events.
const (
	AttrAgentName   = attribute.Key("agent.name")
	AttrAgentStatus = attribute.Key("agent.status")
	AttrStoreOp     = attribute.Key("store.op")
	AttrStatus      = attribute.Key("status")
	AttrSubject     = attribute.Key("subject")
	AttrSessionID   = attribute.Key("session.id")
)
