// Package soft implements the software rendering backend.
//
// The software device is a deterministic CPU stand-in for a GPU: it
// allocates buffers and textures in host memory, executes recorded
// command streams at submit time and signals completion through the
// same callback contract as the hardware backend. Draw calls are
// validated but rasterize nothing; a frame's observable output is its
// cleared attachment, which is enough for coordination, capture and
// movie plumbing to be tested bit-exactly without a GPU.
//
// An optional completion latency delays submit callbacks, simulating
// GPU execution time for backpressure tests.
//
// Importing the package registers the backend under the name
// "software".
package soft
