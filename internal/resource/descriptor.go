package resource

import (
	"github.com/vkngwrapper/core/core1_0"

	"github.com/SPLEEN96/Vulkan-Triangle/internal/gfxerr"
)

// Binding describes one slot of a descriptor set layout.
type Binding struct {
	Binding int
	Type    core1_0.DescriptorType
	Stages  core1_0.ShaderStageFlags
}

// CreateDescriptorSetLayout builds a layout with one descriptor per binding.
func (c *Context) CreateDescriptorSetLayout(bindings []Binding) (core1_0.DescriptorSetLayout, error) {
	var layoutBindings []core1_0.DescriptorSetLayoutBinding
	for _, b := range bindings {
		layoutBindings = append(layoutBindings, core1_0.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  b.Type,
			DescriptorCount: 1,

			StageFlags: b.Stages,
		})
	}

	layout, _, err := c.Device.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: layoutBindings,
	})
	if err != nil {
		return nil, gfxerr.ResourceCreation(err, "descriptor set layout")
	}
	return layout, nil
}

// PoolSizes counts descriptors per type over sets copies of bindings.
func PoolSizes(bindings []Binding, sets int) []core1_0.DescriptorPoolSize {
	counts := map[core1_0.DescriptorType]int{}
	var order []core1_0.DescriptorType
	for _, b := range bindings {
		if _, seen := counts[b.Type]; !seen {
			order = append(order, b.Type)
		}
		counts[b.Type] += sets
	}

	var sizes []core1_0.DescriptorPoolSize
	for _, t := range order {
		sizes = append(sizes, core1_0.DescriptorPoolSize{Type: t, DescriptorCount: counts[t]})
	}
	return sizes
}

// CreateDescriptorPool sizes a pool for sets sets of bindings.
func (c *Context) CreateDescriptorPool(bindings []Binding, sets int) (core1_0.DescriptorPool, error) {
	pool, _, err := c.Device.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		MaxSets:   sets,
		PoolSizes: PoolSizes(bindings, sets),
	})
	if err != nil {
		return nil, gfxerr.ResourceCreation(err, "descriptor pool")
	}
	return pool, nil
}

// AllocateDescriptorSets allocates count sets sharing one layout.
func (c *Context) AllocateDescriptorSets(pool core1_0.DescriptorPool, layout core1_0.DescriptorSetLayout, count int) ([]core1_0.DescriptorSet, error) {
	var allocLayouts []core1_0.DescriptorSetLayout
	for i := 0; i < count; i++ {
		allocLayouts = append(allocLayouts, layout)
	}

	sets, _, err := c.Device.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: pool,
		SetLayouts:     allocLayouts,
	})
	if err != nil {
		return nil, gfxerr.ResourceCreation(err, "descriptor sets")
	}
	return sets, nil
}

// UniformWrite points binding of set at a buffer's descriptor range.
func UniformWrite(set core1_0.DescriptorSet, binding int, buffer *Buffer) core1_0.WriteDescriptorSet {
	return core1_0.WriteDescriptorSet{
		DstSet:          set,
		DstBinding:      binding,
		DstArrayElement: 0,

		DescriptorType: core1_0.DescriptorTypeUniformBuffer,

		BufferInfo: []core1_0.DescriptorBufferInfo{
			{
				Buffer: RawBuffer(buffer.Descriptor.Buffer),
				Offset: buffer.Descriptor.Offset,
				Range:  buffer.Descriptor.Range,
			},
		},
	}
}

// SamplerWrite points binding of set at a view read through sampler.
func SamplerWrite(set core1_0.DescriptorSet, binding int, view core1_0.ImageView, sampler core1_0.Sampler) core1_0.WriteDescriptorSet {
	return core1_0.WriteDescriptorSet{
		DstSet:          set,
		DstBinding:      binding,
		DstArrayElement: 0,

		DescriptorType: core1_0.DescriptorTypeCombinedImageSampler,

		ImageInfo: []core1_0.DescriptorImageInfo{
			{
				ImageView:   view,
				Sampler:     sampler,
				ImageLayout: core1_0.ImageLayoutShaderReadOnlyOptimal,
			},
		},
	}
}

// UpdateDescriptorSets applies writes to the device.
func (c *Context) UpdateDescriptorSets(writes []core1_0.WriteDescriptorSet) error {
	return c.Device.UpdateDescriptorSets(writes, nil)
}
