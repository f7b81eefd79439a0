package lifecycle

// applyOnline records a reachability transition. The flag always reflects the
// platform's last-reported value; there is no polling and no caching beyond
// the event itself.
func (c *Controller) applyOnline(v bool) {
	c.mu.Lock()
	changed := c.online != v
	c.online = v
	c.mu.Unlock()
	if !changed {
		// Platforms occasionally duplicate transition events; applying them
		// is idempotent and not worth a broadcast.
		return
	}
	signalsTotal.WithLabelValues("reachability").Inc()
	c.publisher.Publish(Event{Name: "connectivity", Fields: map[string]any{"online": v}})
	c.log.Debug().Bool("online", v).Msg("connectivity changed")
	c.broadcast()
}

// Online reads the current reachability flag.
func (c *Controller) Online() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}
