package game

// NoSeat marks the absence of an eligible seat.
const NoSeat = -1

// NextActiveSeat returns the first seat after from, wrapping once around the
// table, whose player can still act voluntarily. NoSeat means nobody can.
func NextActiveSeat(r *Room, from int) int {
	return scanSeats(r, from, (*Player).CanAct)
}

// FirstSeatAfterDealer picks who opens action at the start of a hand or round.
func FirstSeatAfterDealer(r *Room) int {
	return scanSeats(r, r.Dealer, func(p *Player) bool {
		return p.InHand() && p.Money > 0
	})
}

func scanSeats(r *Room, from int, eligible func(*Player) bool) int {
	n := len(r.Players)
	if n == 0 {
		return NoSeat
	}
	for step := 1; step <= n; step++ {
		idx := ((from+step)%n + n) % n
		if eligible(r.Players[idx]) {
			return idx
		}
	}
	return NoSeat
}
