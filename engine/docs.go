/*
	gpu resource and render pipeline runtime

	One Context owns one graphics api context and the three registries built on
	top of it:

	Textures	name -> texture, async loaded, placeholder while pending or failed
	Targets		name -> offscreen render target (framebuffer + color/depth textures)
	Pipelines	name -> shader program with its fixed state and uniform cache

	frame:
		ctx.Update()                  // apply finished loads
		ctx.Targets.Autoresize()
		if p := ctx.Begin("blur", 8); p != nil {   // use + configure
			p.SetFloat("radius", 2)
			draw...
			ctx.End()                 // restore
		}

	All gl calls happen on the goroutine that calls Update, Begin and End.
	Fetching and decoding run in background goroutines and hand their results
	back through the context's completion queue.

	Render target uniforms follow a fixed naming scheme, for a target "A":
		AColor      sampler, color attachment
		ADepth      sampler, depth attachment
		AResolution vec2
		AEnabled    int, 0 when the target is missing or incomplete
*/

package engine
