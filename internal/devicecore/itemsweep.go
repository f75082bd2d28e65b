package devicecore

// sweepItemChanges implements spec §4.5 Item-Change Sweep: run from
// Idle before the sub-machines see an event, it verifies and ticks
// pending state changes on whichever sub-devices the event concerns.
func sweepItemChanges(c *Core, d *Device, ev Event) {
	refs := affectedSubDevices(d, ev)
	if len(refs) == 0 {
		return
	}
	for _, ref := range refs {
		res, ok := c.resources.Resolve(ref)
		if !ok {
			continue
		}
		for _, change := range res.PendingChanges() {
			item, found := matchingItem(res, ev)
			change.Verify(item, found)
			change.Tick(c.aps)
		}
		res.GarbageCollectChanges()
	}
}

// affectedSubDevices returns every sub-device the sweep should visit for
// ev: all of them for Poll/Awake, or the single one the event names.
func affectedSubDevices(d *Device, ev Event) []SubDeviceRef {
	if ev.Kind == EventPoll || ev.Kind == EventAwake {
		return d.subDevices
	}
	if ev.Resource == "" {
		return nil
	}
	for _, ref := range d.subDevices {
		if ref.UniqueID == ev.Resource {
			return []SubDeviceRef{ref}
		}
	}
	return nil
}

func matchingItem(res Resource, ev Event) (ResourceItem, bool) {
	if ev.What == "" {
		return nil, false
	}
	return res.Item(ev.What)
}
