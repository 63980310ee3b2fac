package sim

// testScene is an in-memory Scene that counts instance churn.
type testScene struct {
	next      Handle
	live      map[Handle]Transform
	models    map[Handle]ModelID
	created   int
	destroyed int
}

func newTestScene() *testScene {
	return &testScene{
		live:   make(map[Handle]Transform),
		models: make(map[Handle]ModelID),
	}
}

func (s *testScene) Create(m ModelID, t Transform) Handle {
	s.next++
	s.live[s.next] = t
	s.models[s.next] = m
	s.created++
	return s.next
}

func (s *testScene) Destroy(h Handle) {
	if _, ok := s.live[h]; !ok {
		return
	}
	delete(s.live, h)
	delete(s.models, h)
	s.destroyed++
}

func (s *testScene) SetTransform(h Handle, t Transform) {
	if _, ok := s.live[h]; ok {
		s.live[h] = t
	}
}

var testRoad = RoadAsset{Model: 100, Extent: Extent{Width: 14, Height: 0.2, Length: 18.5}}

var testAssets = Assets{
	Road:     testRoad,
	Player:   200,
	Vehicles: Archetypes{1, 2, 3, 4},
}
