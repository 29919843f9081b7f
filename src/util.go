package freedvtnc

// Because sometimes it's really convenient to have C's ternary ?:
func IfThenElse[T any](x bool, a T, b T) T { //nolint:ireturn
	if x {
		return a
	}

	return b
}

// onOff renders a flag the way the command protocol spells it.
func onOff(b bool) string {
	return IfThenElse(b, "ON", "OFF")
}
