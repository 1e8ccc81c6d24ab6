// Package system holds the snake simulation systems. They are ordinary
// core systems: every write goes through the frame context and lands at
// commit.
package system

// System tags.
const (
	TagController = "SnakeController"
	TagMovement   = "Movement"
	TagCollision  = "Collision"
	TagFoodSpawn  = "FoodSpawn"
	TagSnakeGrow  = "SnakeGrow"
	TagSnakeReset = "SnakeReset"
	TagScore      = "Score"
	TagTarget     = "Target"
	TagFollow     = "Follow"
)
