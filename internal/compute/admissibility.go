// GPU-accelerated batch admissibility testing for the flood fill: each
// candidate cell-to-neighbour segment is tested against every cutting
// triangle in one dispatch, instead of one CPU raycast per pair.
package compute

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Segment is one candidate cell-to-neighbour probe: the segment from Origin
// to Origin+Dir, where Dir is the unnormalised centre-to-centre offset
// (both packed as vec4 for WGSL's std430 alignment; W unused).
type Segment struct {
	OX, OY, OZ, _ float32
	DX, DY, DZ, _ float32
}

// Tri is a single triangle used as an occluder during the batch test.
type Tri struct {
	AX, AY, AZ, _ float32
	BX, BY, BZ, _ float32
	CX, CY, CZ, _ float32
}

// AdmissibilityBatch holds the GPU buffers for one admissibility-batch
// pipeline, sized for up to maxSegments probes against maxTris occluders.
type AdmissibilityBatch struct {
	system   *System
	pipeline *Pipeline

	segmentBuffer *Buffer
	triBuffer     *Buffer
	hitBuffer     *Buffer

	maxSegments uint32
	maxTris     uint32
}

const admissibilityShader = `
struct Segment {
    origin: vec3<f32>,
    dir: vec3<f32>,
}

struct Tri {
    a: vec3<f32>,
    b: vec3<f32>,
    c: vec3<f32>,
}

@group(0) @binding(0) var<storage, read> segments: array<Segment>;
@group(0) @binding(1) var<storage, read> tris: array<Tri>;
@group(0) @binding(2) var<storage, read_write> blocked: array<u32>;
@group(0) @binding(3) var<uniform> counts: vec2<u32>; // x = segmentCount, y = triCount

const EPS: f32 = 1e-3;

fn hitsTriangle(origin: vec3<f32>, dir: vec3<f32>, a: vec3<f32>, b: vec3<f32>, c: vec3<f32>) -> bool {
    let e1 = b - a;
    let e2 = c - a;
    let pvec = cross(dir, e2);
    let det = dot(e1, pvec);
    if (abs(det) < EPS) {
        return false;
    }
    let invDet = 1.0 / det;
    let tvec = origin - a;
    let u = dot(tvec, pvec) * invDet;
    if (u < -EPS || u > 1.0 + EPS) {
        return false;
    }
    let qvec = cross(tvec, e1);
    let v = dot(dir, qvec) * invDet;
    if (v < -EPS || u + v > 1.0 + EPS) {
        return false;
    }
    let t = dot(e2, qvec) * invDet;
    return t >= 0.0 && t <= 1.0;
}

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i >= counts.x) {
        return;
    }
    let seg = segments[i];
    for (var j = 0u; j < counts.y; j = j + 1u) {
        let tr = tris[j];
        if (hitsTriangle(seg.origin, seg.dir, tr.a, tr.b, tr.c)) {
            blocked[i] = 1u;
            return;
        }
    }
    blocked[i] = 0u;
}
`

// NewAdmissibilityBatch builds the pipeline and buffers for up to
// maxSegments probes against maxTris occluders. Returns (nil, nil) if no
// GPU compute system is available; callers fall back to the CPU path.
func NewAdmissibilityBatch(maxSegments, maxTris uint32) (*AdmissibilityBatch, error) {
	sys := Get()
	if sys == nil {
		return nil, nil
	}

	pipeline, err := sys.CreatePipeline("admissibility", admissibilityShader, "main")
	if err != nil {
		return nil, err
	}

	segSize := uint64(maxSegments) * 32
	triSize := uint64(maxTris) * 48
	hitSize := uint64(maxSegments) * 4

	segmentBuffer, err := sys.CreateBuffer("segments", segSize, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	triBuffer, err := sys.CreateBuffer("tris", triSize, wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst)
	if err != nil {
		segmentBuffer.Release()
		return nil, err
	}
	hitBuffer, err := sys.CreateBuffer("blocked", hitSize, wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst)
	if err != nil {
		segmentBuffer.Release()
		triBuffer.Release()
		return nil, err
	}

	return &AdmissibilityBatch{
		system:        sys,
		pipeline:      pipeline,
		segmentBuffer: segmentBuffer,
		triBuffer:     triBuffer,
		hitBuffer:     hitBuffer,
		maxSegments:   maxSegments,
		maxTris:       maxTris,
	}, nil
}

// Test runs one batch: for each segment, reports whether it is blocked
// (true) by any triangle in tris. len(segments) must be <= maxSegments and
// len(tris) <= maxTris.
func (ab *AdmissibilityBatch) Test(segments []Segment, tris []Tri) ([]bool, error) {
	if len(segments) == 0 {
		return nil, nil
	}
	if uint32(len(segments)) > ab.maxSegments {
		segments = segments[:ab.maxSegments]
	}
	if uint32(len(tris)) > ab.maxTris {
		tris = tris[:ab.maxTris]
	}

	ab.system.WriteBuffer(ab.segmentBuffer, 0, ToBytes(segments))
	ab.system.WriteBuffer(ab.triBuffer, 0, ToBytes(tris))

	counts := [2]uint32{uint32(len(segments)), uint32(len(tris))}
	uniformBuffer, err := ab.system.CreateBufferWithData("counts", ToBytes(counts[:]), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	defer uniformBuffer.Release()

	if err := ab.dispatch(uint32(len(segments)), uniformBuffer); err != nil {
		return nil, err
	}

	raw, err := ab.system.ReadBuffer(ab.hitBuffer)
	if err != nil {
		return nil, err
	}
	flags := toSlice[uint32](raw)[:len(segments)]
	out := make([]bool, len(segments))
	for i, f := range flags {
		out[i] = f != 0
	}
	return out, nil
}

func (ab *AdmissibilityBatch) dispatch(segmentCount uint32, uniformBuffer *Buffer) error {
	device := ab.system.device
	queue := ab.system.queue

	layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "admissibility_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: 1, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
			{Binding: 3, Visibility: wgpu.ShaderStageCompute, Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
		},
	})
	if err != nil {
		return err
	}
	defer layout.Release()

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "admissibility_bindgroup",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: ab.segmentBuffer.buffer, Size: ab.segmentBuffer.size},
			{Binding: 1, Buffer: ab.triBuffer.buffer, Size: ab.triBuffer.size},
			{Binding: 2, Buffer: ab.hitBuffer.buffer, Size: ab.hitBuffer.size},
			{Binding: 3, Buffer: uniformBuffer.buffer, Size: uniformBuffer.size},
		},
	})
	if err != nil {
		return err
	}
	defer bindGroup.Release()

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "admissibility_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "admissibility_shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: admissibilityShader},
	})
	if err != nil {
		return err
	}
	defer shaderModule.Release()

	pipeline, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "admissibility_pipeline",
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shaderModule,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return err
	}
	defer pipeline.Release()

	encoder, err := device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	workgroups := (segmentCount + 255) / 256
	pass.DispatchWorkgroups(workgroups, 1, 1)
	pass.End()
	pass.Release()

	commands, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commands.Release()

	queue.Submit(commands)
	return nil
}

// Release frees GPU resources.
func (ab *AdmissibilityBatch) Release() {
	if ab.segmentBuffer != nil {
		ab.segmentBuffer.Release()
	}
	if ab.triBuffer != nil {
		ab.triBuffer.Release()
	}
	if ab.hitBuffer != nil {
		ab.hitBuffer.Release()
	}
}
