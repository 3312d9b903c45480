package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/readhive/liveroom/internal/core"
	"github.com/readhive/liveroom/internal/metrics"
)

// Dispatcher is the single-process core.Broadcaster: it resolves an
// event's scope against registry and room state and fans the frame out
// to the matching connections. A multi-process deployment replaces it
// with a broker-backed Broadcaster behind the same interface.
type Dispatcher struct {
	registry *Registry
	rooms    *core.RoomIndex
}

func NewDispatcher(registry *Registry, rooms *core.RoomIndex) *Dispatcher {
	return &Dispatcher{registry: registry, rooms: rooms}
}

func (d *Dispatcher) Publish(ev core.OutboundEvent) {
	frame, err := json.Marshal(ev.Payload)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatch").Str("kind", ev.Kind).Msg("marshal outbound event")
		return
	}
	metrics.Broadcasts.WithLabelValues(ev.Kind).Inc()

	switch ev.Scope {
	case core.ScopeConnection:
		if conn, ok := d.registry.Connection(ev.Conn); ok {
			d.send(ev.Kind, ConnRef{ID: ev.Conn, Conn: conn}, frame)
		}
	case core.ScopeIdentity:
		for _, ref := range d.registry.Connections(ev.Identity) {
			d.send(ev.Kind, ref, frame)
		}
	case core.ScopeRoom, core.ScopeRoomOthers:
		for _, member := range d.rooms.Members(ev.Room) {
			if ev.ExcludeIdentity != "" && member == ev.ExcludeIdentity {
				continue
			}
			for _, ref := range d.registry.Connections(member) {
				if ev.Scope == core.ScopeRoomOthers && ref.ID == ev.SenderConn {
					continue
				}
				d.send(ev.Kind, ref, frame)
			}
		}
	case core.ScopeGlobal:
		for _, ref := range d.registry.AllConnections() {
			d.send(ev.Kind, ref, frame)
		}
	}
}

// send drops the frame on backpressure; a slow reader never stalls the
// coordinator.
func (d *Dispatcher) send(kind string, ref ConnRef, frame core.Frame) {
	if err := ref.Conn.TrySend(frame); err != nil {
		metrics.FramesDropped.Inc()
		log.Warn().Err(err).Str("module", "app.dispatch").Str("kind", kind).Str("conn", string(ref.ID)).Msg("frame dropped")
	}
}
