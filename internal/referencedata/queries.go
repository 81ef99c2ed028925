package referencedata

const (
	queryStates = `SELECT code, name FROM states WHERE active = true ORDER BY display_order, name`

	queryLGAs = `SELECT state_name, name FROM lgas WHERE state_name = $1 ORDER BY name`

	queryPropertyTypes = `SELECT code, label FROM property_types WHERE active = true ORDER BY display_order`

	queryTiers = `SELECT id, label, base_price FROM policy_tiers WHERE active = true ORDER BY base_price`
)
