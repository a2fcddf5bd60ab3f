package globe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ben-daghir/hercap/internal/domain/portfolio"
)

func company(id int, name, location string) portfolio.Company {
	return portfolio.Company{ID: id, Name: name, Location: location, Primary: "AI", Stage: portfolio.StageEarly}
}

func TestClusters_FirstSeenOrder(t *testing.T) {
	cs := []portfolio.Company{
		company(1, "A", "New York, NY"),
		company(2, "B", "London, United Kingdom"),
		company(3, "C", "New York, NY"),
		company(4, "D", "Atlantis"),
		company(5, "E", "Narnia"),
	}
	clusters := Clusters(cs, portfolio.DefaultLocationTable())
	require.Len(t, clusters, 3)

	assert.Equal(t, 40.7128, clusters[0].Lat)
	assert.Equal(t, []string{"A", "C"}, []string{clusters[0].Companies[0].Name, clusters[0].Companies[1].Name})
	assert.Equal(t, "A", clusters[0].Lead().Name)
	assert.Equal(t, "B", clusters[1].Lead().Name)
	assert.Equal(t, "40,0", clusters[2].Key())
	assert.Len(t, clusters[2].Companies, 2)

	total := 0
	for _, cl := range clusters {
		total += len(cl.Companies)
	}
	assert.Equal(t, len(cs), total)
}

func TestClusters_SharedCity(t *testing.T) {
	cs := []portfolio.Company{
		company(1, "A", "Berlin, Germany"),
		company(2, "B", "Berlin, Germany"),
	}
	clusters := Clusters(cs, portfolio.DefaultLocationTable())
	require.Len(t, clusters, 1)
	assert.Equal(t, 52.52, clusters[0].Lat)
	assert.Equal(t, 13.405, clusters[0].Lng)
	assert.Len(t, clusters[0].Companies, 2)
}

func TestClusters_Empty(t *testing.T) {
	assert.Empty(t, Clusters(nil, portfolio.DefaultLocationTable()))
}

func TestHitTest(t *testing.T) {
	p := flatProjection()
	clusters := []LocationCluster{
		{Lat: 0, Lng: 0, Companies: []portfolio.Company{company(1, "A", "x")}},
		{Lat: 0, Lng: 0.5, Companies: []portfolio.Company{company(2, "B", "y")}},
		{Lat: 0, Lng: 180, Companies: []portfolio.Company{company(3, "C", "z")}},
	}

	assert.Equal(t, 1, HitTest(p, clusters, 301, 300, 0), "topmost marker wins")
	assert.Equal(t, 0, HitTest(p, clusters, 295, 300, 0))
	assert.Equal(t, -1, HitTest(p, clusters, 320, 300, 0))
	assert.Equal(t, 1, HitTest(p, clusters, 320, 300, 20))
	assert.Equal(t, -1, HitTest(p, clusters[2:], 300, 300, 0), "hidden clusters are never hit")
}

//Personal.AI order the ending
