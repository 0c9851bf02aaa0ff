package gpu

// QueueFamily is the subset of queue family properties device selection
// looks at.
type QueueFamily struct {
	Graphics bool
	Present  bool
}

// QueueFamilyIndices pairs the graphics and present family indices. Either
// may be absent until a family providing it is found.
type QueueFamilyIndices struct {
	GraphicsFamily *int
	PresentFamily  *int
}

func (i *QueueFamilyIndices) IsComplete() bool {
	return i.GraphicsFamily != nil && i.PresentFamily != nil
}

// Shared reports whether graphics and present use the same family.
func (i *QueueFamilyIndices) Shared() bool {
	return i.IsComplete() && *i.GraphicsFamily == *i.PresentFamily
}

// FindQueueFamilies scans families in order and stops once both roles
// are populated.
func FindQueueFamilies(families []QueueFamily) QueueFamilyIndices {
	indices := QueueFamilyIndices{}

	for queueFamilyIdx, queueFamily := range families {
		if queueFamily.Graphics {
			indices.GraphicsFamily = new(int)
			*indices.GraphicsFamily = queueFamilyIdx
		}

		if queueFamily.Present {
			indices.PresentFamily = new(int)
			*indices.PresentFamily = queueFamilyIdx
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices
}

// UniqueFamilies returns the distinct family indices in graphics, present
// order. One queue is requested per entry.
func UniqueFamilies(indices QueueFamilyIndices) []int {
	if !indices.IsComplete() {
		return nil
	}

	uniqueQueueFamilies := []int{*indices.GraphicsFamily}
	if uniqueQueueFamilies[0] != *indices.PresentFamily {
		uniqueQueueFamilies = append(uniqueQueueFamilies, *indices.PresentFamily)
	}
	return uniqueQueueFamilies
}
