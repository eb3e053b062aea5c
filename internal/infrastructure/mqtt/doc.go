// Package mqtt provides the MQTT connection Luminary uses to reach lights
// and audio level feeds.
//
// Light colours are published as commands to luminary/command/light/{id};
// controllers report back on luminary/state/light/{id}. Level samples for
// sound-reactive shows arrive on luminary/audio/level. The core announces
// itself on luminary/system/status, with a retained Last Will so clients
// see it go offline if the process dies.
//
// The client reconnects automatically and restores its subscriptions on
// every reconnect. Message handlers run with panic recovery.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.LightCommand("par-1")
//	err = client.PublishContext(ctx, topic, payload, 1, false)
package mqtt
