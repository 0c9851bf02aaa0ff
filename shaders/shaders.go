// Package shaders holds the GLSL sources of every pipeline. The programs
// load the compiled SPIR-V from this directory at run time.
package shaders

//go:generate glslc triangle.vert -o triangle.vert.spv
//go:generate glslc triangle.frag -o triangle.frag.spv
//go:generate glslc model.vert -o model.vert.spv
//go:generate glslc model.frag -o model.frag.spv
//go:generate glslc gbuffer.vert -o gbuffer.vert.spv
//go:generate glslc gbuffer.frag -o gbuffer.frag.spv
//go:generate glslc composition.vert -o composition.vert.spv
//go:generate glslc composition.frag -o composition.frag.spv
