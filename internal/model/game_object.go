package model

// GameObject identifies what kind of object to instantiate.
// The set of kinds is open: the instantiator decides which ones it knows.
type GameObject string

// Well-known game objects.
const (
	GameObjectEmpty    GameObject = "empty"
	GameObjectPlayer   GameObject = "player"
	GameObjectNpc      GameObject = "npc"
	GameObjectSunlight GameObject = "sunlight"
	GameObjectLevel    GameObject = "level"
	GameObjectDoorway  GameObject = "doorway"
	GameObjectOrb      GameObject = "orb"
)

// String implements fmt.Stringer.
func (g GameObject) String() string {
	return string(g)
}
