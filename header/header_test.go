package header_test

import (
	"strings"
	"testing"

	"github.com/vsariola/ambientor"
	"github.com/vsariola/ambientor/header"
)

func TestGenerate(t *testing.T) {
	h, err := header.Generate(header.NewData("test"))
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	s := string(h)
	for _, want := range []string{
		"ambientor_handle ambientor_create(float sample_rate);",
		"void ambientor_destroy(ambientor_handle engine);",
		"int32_t ambientor_reset(ambientor_handle engine, float sample_rate);",
		"uint32_t ambientor_render(ambientor_handle engine, float *out, uint32_t frames, uint32_t channels);",
		"int32_t ambientor_set_scene(ambientor_handle engine, const char *name);",
		"int32_t ambientor_set_master_gain(ambientor_handle engine, float value);",
		"int32_t ambientor_set_cut_base(ambientor_handle engine, float value);",
		"int32_t ambientor_set_cut_span(ambientor_handle engine, float value);",
		"int32_t ambientor_set_drive(ambientor_handle engine, float value);",
		"int32_t ambientor_set_out_gain(ambientor_handle engine, float value);",
		"int32_t ambientor_set_detune(ambientor_handle engine, float value);",
		"#define AMBIENTOR_DEFAULT_SCENE \"slow-drone\"",
		"#define AMBIENTOR_CUT_BASE_MAX 12000\n",
		"#define AMBIENTOR_DRIVE_MIN 0.1\n",
		"by ambientor-header test.",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("header does not contain %q", want)
		}
	}
	for _, name := range ambientor.BuiltinScenes().Names() {
		if !strings.Contains(s, name) {
			t.Errorf("header does not list scene %q", name)
		}
	}
	if strings.Count(s, "#ifdef __cplusplus") != 2 {
		t.Errorf("unbalanced extern \"C\" block")
	}
}
