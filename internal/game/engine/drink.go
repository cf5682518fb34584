package engine

func (g *Game) addDrink(player string, d Drink) {
	g.round.Drinks[player] = append(g.round.Drinks[player], d)
	g.recorder.RecordDrink(player, d)
}

// AckDrink confirms that name drank everything owed this round
func (g *Game) AckDrink(name string) (bool, error) {
	if g.phase != PhaseDrink || !g.isPlayer(name) {
		return false, nil
	}
	if len(g.round.Drinks[name]) == 0 || g.round.DrinkAck[name] {
		return false, nil
	}

	g.round.DrinkAck[name] = true
	g.addEvent("%s heeft bevestigd: gedronken ✅", name)

	g.advance()
	return true, nil
}
