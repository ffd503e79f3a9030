package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	State         string       `json:"state"`
	Pending       string       `json:"pending"`
	PendingCount  int          `json:"pending_count"`
	Target        int          `json:"target_slot"`
	LastDigit     string       `json:"last_digit,omitempty"`
	LastWake      string       `json:"last_wake,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Gestures    int `json:"gestures"`
	Digits      int `json:"digits"`
	Discarded   int `json:"discarded"`
	Escalations int `json:"escalations"`
	Commits     int `json:"commits"`
	DialOuts    int `json:"dial_outs"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	SampleUs         int64  `json:"sample_us"`
	SettleMs         int64  `json:"settle_ms"`
	HoldMs           int64  `json:"hold_ms"`
	InactivityMs     int64  `json:"inactivity_ms"`
	Reversed         bool   `json:"reversed"`
	SpecialFunctions bool   `json:"special_functions"`
	Chip             string `json:"chip"`
	PinDial          int    `json:"pin_dial"`
	PinPulse         int    `json:"pin_pulse"`
	Broker           string `json:"broker"`
	HTTPPort         string `json:"http_port"`
	DBPath           string `json:"db_path"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		State:         snap.State.String(),
		Pending:       snap.Pending.String(),
		PendingCount:  snap.PendingCount,
		Target:        int(snap.Target),
		LastWake:      snap.LastWake,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Gestures:    snap.Counts.Gestures,
			Digits:      snap.Counts.Digits,
			Discarded:   snap.Counts.Discarded,
			Escalations: snap.Counts.Escalations,
			Commits:     snap.Counts.Commits,
			DialOuts:    snap.Counts.DialOuts,
		},
		Config: ConfigJSON{
			SampleUs:         snap.Config.SampleUs,
			SettleMs:         snap.Config.SettleMs,
			HoldMs:           snap.Config.HoldMs,
			InactivityMs:     snap.Config.InactivityMs,
			Reversed:         snap.Config.Reversed,
			SpecialFunctions: snap.Config.SpecialFunctions,
			Chip:             snap.Config.Chip,
			PinDial:          snap.Config.PinDial,
			PinPulse:         snap.Config.PinPulse,
			Broker:           snap.Config.Broker,
			HTTPPort:         snap.Config.HTTPPort,
			DBPath:           snap.Config.DBPath,
		},
	}
	if snap.LastDigit.IsDialable() {
		inner.LastDigit = snap.LastDigit.String()
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
