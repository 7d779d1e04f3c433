package wgpurender

// copyWGSL draws a full-screen triangle clipped by the viewport. fs_fill
// writes a constant, fs_blit maps the destination rectangle onto the source
// rectangle with nearest-texel lookups.
const copyWGSL = `
struct Params {
    src: vec4<f32>,
    dst: vec4<f32>,
    color: vec4<f32>,
};

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var src_tex: texture_2d<f32>;

@vertex
fn vs_main(@builtin(vertex_index) i: u32) -> @builtin(position) vec4<f32> {
    let uv = vec2<f32>(f32((i << 1u) & 2u), f32(i & 2u));
    return vec4<f32>(uv * 2.0 - 1.0, 0.0, 1.0);
}

@fragment
fn fs_fill() -> @location(0) vec4<f32> {
    return params.color;
}

@fragment
fn fs_blit(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {
    let rel = (pos.xy - params.dst.xy) / params.dst.zw;
    let texel = vec2<i32>(floor(params.src.xy + rel * params.src.zw));
    return textureLoad(src_tex, texel, 0);
}
`
