// Package vehicle implements the per-vehicle path follower: Intelligent
// Driver Model longitudinal dynamics, leader-aware acceleration,
// anticipatory next-edge speed capping, edge traversal, and
// cooldown-throttled dynamic re-routing.
package vehicle

// IDMParams are the Intelligent Driver Model tunables for one vehicle.
// Car and Truck differ only in these values; Vehicle is parameterized by
// IDMParams rather than subtyped.
type IDMParams struct {
	V0    float64 // desired speed
	A     float64 // max acceleration
	B     float64 // comfortable deceleration, positive
	T     float64 // time headway
	S0    float64 // jam distance
	Delta float64 // exponent, typically 4
}

// CarIDM returns the default IDMParams for a Car.
func CarIDM() IDMParams {
	return IDMParams{V0: 50, A: 35, B: 40, T: 1.2, S0: 2.0, Delta: 4}
}

// TruckIDM returns the default IDMParams for a Truck.
func TruckIDM() IDMParams {
	return IDMParams{V0: 25, A: 15, B: 20, T: 1.8, S0: 3.0, Delta: 4}
}

// LeaderInfo is the per-tick leader input set once per tick by the
// Simulation and cleared on edge switch.
type LeaderInfo struct {
	Present     bool
	Gap         float64 // free distance ahead
	LeaderSpeed float64
}
