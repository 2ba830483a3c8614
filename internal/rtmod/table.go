package rtmod

import "kernc/internal/target"

func always(target.Target) bool { return true }

func never(target.Target) bool { return false }

func onOS(oses ...target.OS) func(target.Target) bool {
	return func(t target.Target) bool {
		for _, o := range oses {
			if t.OS == o {
				return true
			}
		}
		return false
	}
}

func onArch(a target.Arch) func(target.Target) bool {
	return func(t target.Target) bool { return t.Arch == a }
}

func withFeature(f target.FeatureSet) func(target.Target) bool {
	return func(t target.Target) bool { return t.Has(f) }
}

func onAccelerator(a target.Accelerator, debug bool) func(target.Target) bool {
	return func(t target.Target) bool {
		return t.Accelerator() == a && t.GPUDebug() == debug
	}
}

// builtin is the composition table, in link order. Within the OS group each
// OS selects, in order: clock, I/O, host CPU count (where it has one) and
// thread pool.
var builtin = []Descriptor{
	{"linux_clock", KindBits, GroupOS, onOS(target.Linux)},
	{"posix_clock", KindBits, GroupOS, onOS(target.OSX, target.Windows, target.IOS, target.NaCl)},
	{"android_clock", KindBits, GroupOS, onOS(target.Android)},
	{"posix_io", KindBits, GroupOS, onOS(target.Linux, target.Windows, target.NaCl)},
	{"osx_io", KindBits, GroupOS, onOS(target.OSX)},
	{"ios_io", KindBits, GroupOS, onOS(target.IOS)},
	{"android_io", KindBits, GroupOS, onOS(target.Android)},
	{"linux_host_cpu_count", KindBits, GroupOS, onOS(target.Linux, target.NaCl)},
	{"android_host_cpu_count", KindBits, GroupOS, onOS(target.Android)},
	// GCD sizes its own pool, so no OS bundle links this one.
	{"osx_host_cpu_count", KindBits, GroupOS, never},
	{"posix_thread_pool", KindBits, GroupOS, onOS(target.Linux, target.Android, target.NaCl)},
	{"gcd_thread_pool", KindBits, GroupOS, onOS(target.OSX, target.IOS)},
	{"fake_thread_pool", KindBits, GroupOS, onOS(target.Windows)},

	{"posix_math", KindBits, GroupCommon, always},
	{"posix_math", KindArch, GroupCommon, always},
	{"tracing", KindBits, GroupCommon, always},
	{"write_debug_image", KindBits, GroupCommon, always},
	{"posix_allocator", KindBits, GroupCommon, always},
	{"posix_error_handler", KindBits, GroupCommon, always},

	{"x86", KindArch, GroupArch, onArch(target.X86)},
	{"arm", KindArch, GroupArch, onArch(target.ARM)},
	{"x86_sse41", KindArch, GroupArch, withFeature(target.SSE41)},
	{"x86_avx", KindArch, GroupArch, withFeature(target.AVX)},

	{"cuda", KindBits, GroupAccelerator, onAccelerator(target.AccelCUDA, false)},
	{"cuda_debug", KindBits, GroupAccelerator, onAccelerator(target.AccelCUDA, true)},
	{"opencl", KindBits, GroupAccelerator, onAccelerator(target.AccelOpenCL, false)},
	{"opencl_debug", KindBits, GroupAccelerator, onAccelerator(target.AccelOpenCL, true)},
	{"nogpu", KindBits, GroupAccelerator, onAccelerator(target.AccelNone, false)},

	{"ptx_dev", KindArch, GroupDevice, withFeature(target.CUDA)},
}

// Builtin returns a copy of the composition table.
func Builtin() []Descriptor {
	out := make([]Descriptor, len(builtin))
	copy(out, builtin)
	return out
}
