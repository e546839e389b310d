package models

// Placement pairs an entity with its resolved coordinates. It is the unit the
// viewport filter emits and the clusterer consumes.
type Placement struct {
	Entity      Entity      `json:"entity"`
	Coordinates Coordinates `json:"coordinates"`
}

// Cluster is an ephemeral grouping of two or more placements, recomputed from
// scratch on every clustering pass. The centroid is the arithmetic mean of the
// member coordinates.
type Cluster struct {
	ID       string      `json:"id"` // ID is a synthetic identifier, unique per pass.
	Members  []Placement `json:"members"`
	Centroid Coordinates `json:"centroid"`
}

// AnnotationKind discriminates the two annotation variants.
type AnnotationKind string

const (
	// AnnotationPin marks an annotation carrying a single entity.
	AnnotationPin AnnotationKind = "pin"
	// AnnotationCluster marks an annotation carrying a cluster of entities.
	AnnotationCluster AnnotationKind = "cluster"
)

// Annotation is the only type exposed to rendering: a tagged union of a single
// pin or a cluster pin. Exactly one of Pin and Cluster is set, matching Kind.
type Annotation struct {
	Kind    AnnotationKind `json:"kind"`
	Pin     *Placement     `json:"pin,omitempty"`
	Cluster *Cluster       `json:"cluster,omitempty"`
}

// NewPin builds a single-entity annotation.
func NewPin(p Placement) Annotation {
	pin := p
	return Annotation{Kind: AnnotationPin, Pin: &pin}
}

// NewClusterPin builds a cluster annotation.
func NewClusterPin(c Cluster) Annotation {
	cluster := c
	return Annotation{Kind: AnnotationCluster, Cluster: &cluster}
}

// Size returns the number of entities the annotation stands for.
func (a Annotation) Size() int {
	if a.Kind == AnnotationCluster && a.Cluster != nil {
		return len(a.Cluster.Members)
	}
	return 1
}
