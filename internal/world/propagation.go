package world

// mustElevate сочетания более высоких соседей, при которых узел нельзя
// нарисовать ни одним склоном и он сам поднимается на единицу.
// Таблица полная: две пары противоположных направлений и четыре тройки
// "диагональ и две ортогонали напротив неё".
var mustElevate = [...]DirectionMask{
	Mask(DirTop, DirBottom),
	Mask(DirLeft, DirRight),
	Mask(DirTopLeft, DirRight, DirBottom),
	Mask(DirTopRight, DirLeft, DirBottom),
	Mask(DirBottomLeft, DirRight, DirTop),
	Mask(DirBottomRight, DirLeft, DirTop),
}

// propagation состояние одного прохода распространения высот
type propagation struct {
	m         *Map
	neighbors map[*MapNode][]NeighborNode

	queue      []*MapNode // узлы с изменившейся высотой, FIFO
	candidates []*MapNode // кандидаты на пересчёт маски высот, LIFO
	pending    map[*MapNode]bool

	visited   []*MapNode
	seen      map[*MapNode]bool
	reshaped  []*MapNode // узлы, у которых изменилась маска высот
	reshapedS map[*MapNode]bool
}

func (m *Map) newPropagation() *propagation {
	return &propagation{
		m:         m,
		neighbors: make(map[*MapNode][]NeighborNode),
		pending:   make(map[*MapNode]bool),
		seen:      make(map[*MapNode]bool),
		reshapedS: make(map[*MapNode]bool),
	}
}

func (p *propagation) neighborsOf(n *MapNode) []NeighborNode {
	nbs, ok := p.neighbors[n]
	if !ok {
		nbs = p.m.Neighbors(n.pos.Vec2, false)
		p.neighbors[n] = nbs
	}
	return nbs
}

func (p *propagation) addCandidate(n *MapNode) {
	if p.pending[n] {
		return
	}
	p.pending[n] = true
	p.candidates = append(p.candidates, n)
}

func (p *propagation) visit(n *MapNode) {
	if p.seen[n] {
		return
	}
	p.seen[n] = true
	p.visited = append(p.visited, n)
}

// relax выравнивает перепады вокруг узлов из очереди
func (p *propagation) relax() {
	for len(p.queue) > 0 {
		n := p.queue[0]
		p.queue = p.queue[1:]

		p.addCandidate(n)
		for _, nb := range p.neighborsOf(n) {
			p.addCandidate(nb.Node)

			diff := n.pos.Height - nb.Node.pos.Height
			if diff > 1 || diff < -1 {
				if p.m.setHeight(nb.Node, diff > 0) {
					p.queue = append(p.queue, nb.Node)
				}
			}
		}
	}
}

// elevate пересчитывает маску высот последнего добавленного кандидата и
// поднимает его, если форма склона недопустима
func (p *propagation) elevate() {
	last := len(p.candidates) - 1
	e := p.candidates[last]
	p.candidates = p.candidates[:last]
	delete(p.pending, e)
	p.visit(e)

	mask := ElevationMask(e, p.neighborsOf(e))
	if mask != e.elevation {
		e.elevation = mask
		if !p.reshapedS[e] {
			p.reshapedS[e] = true
			p.reshaped = append(p.reshaped, e)
		}
	}

	for _, combo := range mustElevate {
		if !mask.Contains(combo) {
			continue
		}
		if p.m.setHeight(e, true) {
			p.m.stats.NodesElevated++
			p.queue = append(p.queue, e)
		}
		break
	}
}

// finish сносит зоны и декор с узлов, сменивших форму, и пересчитывает
// маски стыковки всех посещённых узлов
func (p *propagation) finish() {
	for _, n := range p.reshaped {
		if p.m.demolishLayers(n, LayerZone, LayerGroundDecoration) {
			for _, nb := range p.neighborsOf(n) {
				p.visit(nb.Node)
			}
		}
	}

	for _, n := range p.visited {
		p.m.updateAutoTile(n, p.neighborsOf(n))
		p.m.markRefresh(n)
	}

	p.m.stats.PropagationPasses++
	p.m.stats.NodesVisited += uint64(len(p.visited))
}

// updateNodeNeighbors восстанавливает непрерывность высот после изменения
// узлов seeds, пересчитывает маски высот и стыковки затронутых узлов и
// ставит их в очередь на обновление текстуры.
//
// Две очереди обрабатываются по очереди до полного опустошения обеих:
// сначала выравниваются все перепады, затем по одному снимаются кандидаты
// на пересчёт маски. Поднятый кандидат снова попадает в очередь высот.
func (m *Map) updateNodeNeighbors(seeds []*MapNode) {
	if len(seeds) == 0 {
		return
	}

	p := m.newPropagation()
	p.queue = append(p.queue, seeds...)

	for len(p.queue) > 0 || len(p.candidates) > 0 {
		p.relax()
		if len(p.candidates) > 0 {
			p.elevate()
		}
	}
	p.finish()

	m.log.Trace("Распространение высот: %d затравок, %d узлов посещено", len(seeds), len(p.visited))
}
