package redis

// Redis key naming conventions for hook data.
// All keys are prefixed with "hooks:" to avoid collisions.

const keyPrefix = "hooks:"

// scheduleKey returns the key for a schedule entry: hooks:schedule:{id}
func scheduleKey(id string) string { return keyPrefix + "schedule:" + id }

// scheduleIDsKey is the Set tracking all schedule entry IDs for
// enumeration.
const scheduleIDsKey = keyPrefix + "schedule_ids"

// emissionsKey is the List holding emission audit records, newest
// first.
const emissionsKey = keyPrefix + "emissions"
