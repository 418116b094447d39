package moneyhero

// gainExp adds amount experience to s, levelling up as many times as needed.
// It returns the number of levels gained. Non positive amounts only
// normalize the state. Experience saturates instead of overflowing and a
// player at MaxLevel keeps just short of the next threshold.
func (r Rules) gainExp(s *PlayerState, amount int64) int {
	s.Exp = addExp(s.Exp, amount)
	s.ExpToNextLevel = r.ExpForLevel(s.Level)
	levels := 0
	for s.Exp >= s.ExpToNextLevel {
		if s.Level >= MaxLevel {
			s.Exp = s.ExpToNextLevel - 1
			break
		}
		s.Exp -= s.ExpToNextLevel
		s.Level++
		s.ExpToNextLevel = r.ExpForLevel(s.Level)
		levels++
	}
	s.refresh()
	return levels
}

// loseExp removes amount experience from s. When the current level does not
// hold enough experience, a full previous level is borrowed. Level 1 absorbs
// any remaining deficit at 0 experience.
// It returns the number of levels lost.
func (r Rules) loseExp(s *PlayerState, amount int64) int {
	if amount <= 0 {
		return 0
	}
	deficit := amount
	levels := 0
	for deficit > s.Exp {
		if s.Level <= 1 {
			s.Level = 1
			s.Exp = 0
			deficit = 0
			break
		}
		deficit -= s.Exp
		s.Level--
		s.ExpToNextLevel = r.ExpForLevel(s.Level)
		s.Exp = s.ExpToNextLevel
		levels++
	}
	s.Exp -= deficit
	s.ExpToNextLevel = r.ExpForLevel(s.Level)
	s.refresh()
	return levels
}
