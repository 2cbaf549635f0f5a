package similarity

// Sequences at least this long get automatic junk detection: runes that make up
// more than 1% of b are ignored as match anchors.
const autoJunkMinLen = 200

// block is a matching run: a[i:i+size] == b[j:j+size]
type block struct {
	i, j, size int
}

// matcher finds matching blocks between a and b
type matcher struct {
	a, b    []rune
	b2j     map[rune][]int
	popular map[rune]bool
}

func newMatcher(a, b []rune) *matcher {
	m := &matcher{a: a, b: b, b2j: make(map[rune][]int)}
	for j, r := range b {
		m.b2j[r] = append(m.b2j[r], j)
	}

	if n := len(b); n >= autoJunkMinLen {
		limit := n/100 + 1
		for r, idxs := range m.b2j {
			if len(idxs) > limit {
				if m.popular == nil {
					m.popular = make(map[rune]bool)
				}
				m.popular[r] = true
				delete(m.b2j, r)
			}
		}
	}

	return m
}

// longestMatch finds the longest matching block in a[alo:ahi] and b[blo:bhi].
// Ties go to the block starting earliest in a, then earliest in b.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) block {
	best := block{i: alo, j: blo}

	// j2len[j] is the length of the match ending at a[i-1], b[j]
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > best.size {
				best = block{i: i - k + 1, j: j - k + 1, size: k}
			}
		}
		j2len = next
	}

	// Popular runes were never anchors; let the block grow over them
	for best.i > alo && best.j > blo && m.a[best.i-1] == m.b[best.j-1] {
		best.i--
		best.j--
		best.size++
	}
	for best.i+best.size < ahi && best.j+best.size < bhi && m.a[best.i+best.size] == m.b[best.j+best.size] {
		best.size++
	}

	return best
}

// matches returns the total number of matched runes across all matching blocks
func (m *matcher) matches() int {
	type span struct{ alo, ahi, blo, bhi int }

	total := 0
	queue := []span{{0, len(m.a), 0, len(m.b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		blk := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if blk.size == 0 {
			continue
		}
		total += blk.size

		if s.alo < blk.i && s.blo < blk.j {
			queue = append(queue, span{s.alo, blk.i, s.blo, blk.j})
		}
		if blk.i+blk.size < s.ahi && blk.j+blk.size < s.bhi {
			queue = append(queue, span{blk.i + blk.size, s.ahi, blk.j + blk.size, s.bhi})
		}
	}
	return total
}

// MatchRatio returns 2*M/T for the matching blocks of a and b. Two empty
// sequences are identical and score 1.
func MatchRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1
	}
	m := newMatcher(a, b)
	return 2.0 * float64(m.matches()) / float64(total)
}
