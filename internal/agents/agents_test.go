package agents

import (
	"errors"
	"math"
	"testing"

	"github.com/talgya/assetworld/internal/assets"
	"github.com/talgya/assetworld/internal/entropy"
)

func checkValid(t *testing.T, ind *Individual, p Params) {
	t.Helper()
	if len(ind.Genome) != p.GenomeLength {
		t.Fatalf("genome length = %d, want %d", len(ind.Genome), p.GenomeLength)
	}
	if err := ind.Verify(p); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ind.Happiness(p.HappinessUnit) < 0 {
		t.Fatalf("negative happiness")
	}
}

func TestFromAtoms(t *testing.T) {
	p := DefaultParams()
	s := NewSpawner(p)
	ind := s.FromAtoms(entropy.New(1))
	checkValid(t, ind, p)

	// Weights are the evenly spread ladder, one per type.
	seen := map[float64]bool{}
	step := (p.PreferenceMax - p.PreferenceMin) / float64(assets.NumTypes-1)
	for _, w := range ind.Preferences {
		k := math.Round((w-p.PreferenceMin)/step*1e6) / 1e6
		if k != math.Trunc(k) {
			t.Fatalf("weight %v is not on the ladder", w)
		}
		seen[k] = true
	}
	if len(seen) != assets.NumTypes {
		t.Fatalf("weights not distinct: %v", ind.Preferences)
	}
}

func TestFromParents(t *testing.T) {
	p := DefaultParams()
	s := NewSpawner(p)
	rng := entropy.New(2)
	p1, p2 := s.FromAtoms(rng), s.FromAtoms(rng)
	child := s.FromParents(p1, p2, rng)
	checkValid(t, child, p)

	pool := map[byte]bool{}
	for _, b := range append(append(Genome{}, p1.Genome...), p2.Genome...) {
		pool[b] = true
	}
	for _, b := range child.Genome {
		if !pool[b] {
			t.Fatalf("child symbol %q not in parents' genomes", b)
		}
	}

	// One shared perturbation: every unclamped type moves by the same amount.
	var shift float64
	shiftSet := false
	for _, typ := range assets.AllTypes {
		avg := (p1.Preferences[typ] + p2.Preferences[typ]) / 2
		got := child.Preferences[typ]
		if math.Abs(got-avg) > p.PreferenceDelta+1e-9 {
			t.Fatalf("%s: child %v too far from parent average %v", typ, got, avg)
		}
		if got == p.PreferenceMin || got == p.PreferenceMax {
			continue
		}
		if !shiftSet {
			shift, shiftSet = got-avg, true
		} else if math.Abs((got-avg)-shift) > 1e-9 {
			t.Fatalf("perturbation differs between types: %v vs %v", got-avg, shift)
		}
	}
}

func TestPreferencesStayInRangeAcrossGenerations(t *testing.T) {
	p := DefaultParams()
	p.PreferenceDelta = 0.5
	s := NewSpawner(p)
	rng := entropy.New(3)
	a, b := s.FromAtoms(rng), s.FromAtoms(rng)
	for gen := 0; gen < 200; gen++ {
		c := s.FromParents(a, b, rng)
		if err := c.Verify(p); err != nil {
			t.Fatalf("generation %d: %v", gen, err)
		}
		a, b = b, c
	}
}

func TestIDsAreUnique(t *testing.T) {
	s := NewSpawner(DefaultParams())
	inds := s.Batch(20, entropy.New(4))
	if len(inds) != 20 {
		t.Fatalf("len = %d", len(inds))
	}
	seen := map[IndividualID]bool{}
	for _, ind := range inds {
		if seen[ind.ID] {
			t.Fatalf("duplicate ID %d", ind.ID)
		}
		seen[ind.ID] = true
	}
}

func TestPreferredAssetTypeTieBreak(t *testing.T) {
	ind := &Individual{}
	for _, typ := range assets.AllTypes {
		ind.Preferences[typ] = 0.5
	}
	if got := ind.PreferredAssetType(); got != assets.TypeGrain {
		t.Fatalf("all equal: got %s, want Grain", got)
	}
	ind.Preferences[assets.TypeGems] = 0.9
	ind.Preferences[assets.TypeHerbs] = 0.9
	if got := ind.PreferredAssetType(); got != assets.TypeHerbs {
		t.Fatalf("tie: got %s, want Herbs", got)
	}
}

func TestCollectAssets(t *testing.T) {
	s := NewSpawner(DefaultParams())
	ind := s.FromAtoms(entropy.New(5))
	site := assets.NewSite()
	site.Extend(assets.Random(100, entropy.New(6)))

	left := ind.CollectAssets(site, entropy.New(7))
	if left.Len()+len(ind.Assets) != 100 {
		t.Fatalf("collected %d + left %d != 100", len(ind.Assets), left.Len())
	}

	all := &Individual{}
	for _, typ := range assets.AllTypes {
		all.Preferences[typ] = 0.9
	}
	left = all.CollectAssets(left, entropy.NewConstant(0, 1))
	if left.Len() != 0 {
		t.Fatalf("draw of 0 should collect everything, %d left", left.Len())
	}

	none := &Individual{}
	rest := assets.NewSite()
	rest.Extend(assets.Random(10, entropy.New(8)))
	if got := none.CollectAssets(rest, entropy.NewConstant(0.99, 1)); got.Len() != 10 {
		t.Fatalf("draw of 0.99 collected something")
	}
}

func TestGrantAndHappiness(t *testing.T) {
	ind := &Individual{}
	ind.Preferences[assets.TypeFish] = 0.4
	ind.Grant(assets.New(assets.TypeFish))
	ind.GrantMany(assets.Many(assets.TypeFish, 2))
	if len(ind.Assets) != 3 {
		t.Fatalf("len = %d", len(ind.Assets))
	}
	if got := ind.Happiness(2.0); math.Abs(got-2.4) > 1e-9 {
		t.Fatalf("happiness = %v, want 2.4", got)
	}
}

func TestRevoke(t *testing.T) {
	ind := &Individual{}
	old := assets.New(assets.TypeStone)
	ind.Grant(old)

	got, err := ind.Revoke(assets.TypeStone)
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if got != old || len(ind.Assets) != 0 {
		t.Fatalf("revoked wrong asset or left it behind")
	}

	ind.Grant(old)
	if _, err := ind.Revoke(assets.TypeGems); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(ind.Assets) != 1 || ind.Assets[0] != old {
		t.Fatalf("failed revoke changed holdings")
	}
}

func TestInherit(t *testing.T) {
	s := NewSpawner(DefaultParams())
	rng := entropy.New(9)
	p1, p2 := s.FromAtoms(rng), s.FromAtoms(rng)
	p1.GrantMany(assets.Random(50, rng))
	p2.GrantMany(assets.Random(51, rng))
	child := s.FromParents(p1, p2, rng)

	child.Inherit(p1, rng)
	if len(p1.Assets) != 25 || len(child.Assets) != 25 {
		t.Fatalf("even split: parent %d child %d", len(p1.Assets), len(child.Assets))
	}
	child.Inherit(p2, rng)
	if len(p2.Assets) != 26 || len(child.Assets) != 50 {
		t.Fatalf("odd split: parent %d child %d", len(p2.Assets), len(child.Assets))
	}
	if len(p1.Assets)+len(p2.Assets)+len(child.Assets) != 101 {
		t.Fatalf("inherit changed the combined holdings")
	}
}

func TestAgeBy(t *testing.T) {
	p := DefaultParams()
	p.BaseDeathProb = 0.1
	p.DailyStarveProb = 0.05
	p.MaxAge = 10

	tests := []struct {
		name         string
		age          int
		starvingDays int
		food         bool
		draw         float64
		units        int
		alive        bool
	}{
		{"fed and lucky", 0, 0, true, 0.5, 1, true},
		{"fed but unlucky", 0, 0, true, 0.05, 1, false},
		{"starving one day", 0, 0, false, 0.16, 1, true},
		{"starving one day unlucky", 0, 0, false, 0.14, 1, false},
		{"long starvation", 0, 9, false, 0.7, 1, false},
		{"food resets hunger", 0, 9, true, 0.2, 1, true},
		{"too old", 10, 0, true, 0.99, 1, false},
		{"at max age", 9, 0, true, 0.99, 1, true},
		{"multi unit aging", 5, 0, true, 0.99, 6, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := &Individual{Age: tt.age, StarvingDays: tt.starvingDays}
			if tt.food {
				ind.Grant(assets.New(assets.TypeStone))
				ind.Grant(assets.New(assets.TypeGrain))
				ind.Grant(assets.New(assets.TypeFish))
			}
			before := len(ind.Assets)
			got := ind.AgeBy(tt.units, p, entropy.NewConstant(tt.draw, 1))
			if got != tt.alive {
				t.Fatalf("alive = %v, want %v", got, tt.alive)
			}
			if tt.food {
				if len(ind.Assets) != before-1 || ind.StarvingDays != 0 {
					t.Fatalf("expected one meal: assets %d, starving %d", len(ind.Assets), ind.StarvingDays)
				}
				if ind.Assets[1].Type != assets.TypeFish {
					t.Fatalf("should eat the first edible asset")
				}
			} else if ind.StarvingDays != tt.starvingDays+1 {
				t.Fatalf("starving days = %d", ind.StarvingDays)
			}
		})
	}
}

func TestAverageGenomeAndDistance(t *testing.T) {
	pop := []*Individual{
		{Genome: Genome("aab")},
		{Genome: Genome("abc")},
	}
	avg := AverageGenome(pop)
	want := map[byte]float64{'a': 1.5, 'b': 1, 'c': 0.5}
	for b, v := range want {
		if math.Abs(avg[b]-v) > 1e-9 {
			t.Fatalf("avg[%q] = %v, want %v", b, avg[b], v)
		}
	}
	// (1.5-2)^2 + (1-1)^2 + (0.5-0)^2
	if d := pop[0].DNADistance(avg); math.Abs(d-0.5) > 1e-9 {
		t.Fatalf("distance = %v, want 0.5", d)
	}
	if len(AverageGenome(nil)) != 0 {
		t.Fatalf("empty population should have empty average")
	}
}

func TestFight(t *testing.T) {
	tests := []struct {
		inf1, inf2 float64
		draw       bool
		survivor   int
	}{
		{10, 20, false, 1},
		{20, 10, false, 0},
		{10, 10, true, -1},
	}
	for _, tt := range tests {
		rng := entropy.New(10)
		a := &Individual{ID: 1, Influence: tt.inf1}
		b := &Individual{ID: 2, Influence: tt.inf2}
		a.GrantMany(assets.Random(50, rng))
		b.GrantMany(assets.Random(50, rng))
		union := map[*assets.Asset]bool{}
		for _, x := range append(append([]*assets.Asset{}, a.Assets...), b.Assets...) {
			union[x] = true
		}
		pair := []*Individual{a, b}

		result := a.Fight(b)
		if tt.draw {
			if len(result) != 2 || len(a.Assets) != 50 || len(b.Assets) != 50 {
				t.Fatalf("draw changed holdings")
			}
			continue
		}
		if len(result) != 1 || result[0] != pair[tt.survivor] {
			t.Fatalf("wrong survivor %v", result)
		}
		if len(result[0].Assets) != 100 {
			t.Fatalf("survivor holds %d", len(result[0].Assets))
		}
		for _, x := range result[0].Assets {
			if !union[x] {
				t.Fatalf("survivor holds a foreign asset")
			}
		}
		if len(pair[1-tt.survivor].Assets) != 0 {
			t.Fatalf("loser still holds assets")
		}
	}
}

func TestReproduceWith(t *testing.T) {
	s := NewSpawner(DefaultParams())
	rng := entropy.New(11)
	p1, p2 := s.FromAtoms(rng), s.FromAtoms(rng)
	p1.GrantMany(assets.Random(10, rng))
	p2.GrantMany(assets.Random(10, rng))

	family := p1.ReproduceWith(p2, s, rng)
	if len(family) != 3 || family[0] != p1 || family[2] != p2 {
		t.Fatalf("family = %v", family)
	}
	child := family[1]
	if child.ID == p1.ID || child.ID == p2.ID {
		t.Fatalf("child reused a parent ID")
	}
	if len(child.Assets) != 10 || len(p1.Assets)+len(p2.Assets) != 10 {
		t.Fatalf("holdings not split: child %d parents %d", len(child.Assets), len(p1.Assets)+len(p2.Assets))
	}
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	p := DefaultParams()
	p.PreferenceMin = 0.95
	if err := p.Validate(); err == nil {
		t.Fatalf("inverted range accepted")
	}
}
