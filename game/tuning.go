package game

const (
	SpawnX = 400.0 // fixed spawn point for every new player
	SpawnY = 300.0

	MoveSpeed = 5.0 // px per direction event

	RoomCapacity = 4
	TaggerSlot   = 2 // third joiner plays the tagger

	TaggerFreezeSeconds = 10  // opening phase: tagger cannot move or tag
	MatchSeconds        = 120 // default main countdown
	ChainDelaySeconds   = 3   // gap between opening expiry and match start
	GameOverDelaySeconds = 5  // lets elimination animations settle client-side

	OverlapCooldownMs = 1000 // debounce window per contact pair
)
