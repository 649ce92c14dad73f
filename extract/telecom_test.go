package extract

import "testing"

func TestTelecomsMobileDetectionOnHomeField(t *testing.T) {
	ctx := NewContext()
	seg := mustParseSegment(t, `PID|1||||||||||||^PRN^PH^^^^^^^^^0608987212~~~^NET^Internet^MARYSE.SECLET@WANADOO.FR`)

	cps := Telecoms(ctx, seg, 13, true)

	var hasMobile, hasEmail bool
	for _, cp := range cps {
		if cp.System == "phone" && cp.Use == "mobile" && cp.Value == "0608987212" {
			hasMobile = true
		}
		if cp.System == "email" && cp.Value == "MARYSE.SECLET@WANADOO.FR" {
			hasEmail = true
		}
	}
	if !hasMobile {
		t.Errorf("expected mobile phone 0608987212, got %+v", cps)
	}
	if !hasEmail {
		t.Errorf("expected email MARYSE.SECLET@WANADOO.FR, got %+v", cps)
	}
}

func TestTelecomsMobileOnWorkFieldGetsExtensionNotUseFlip(t *testing.T) {
	ctx := NewContext()
	seg := mustParseSegment(t, `PID|1|||||||||||||^WPN^PH^^^^^^^^^0608987212`)

	cps := Telecoms(ctx, seg, 14, false)
	if len(cps) != 1 {
		t.Fatalf("got %d contact points, want 1", len(cps))
	}
	if cps[0].Use == "mobile" {
		t.Errorf("work-field mobile should keep use=%q, not flip to mobile", cps[0].Use)
	}
	if len(cps[0].Extension) != 1 {
		t.Errorf("expected mobility extension on work-field mobile number, got %+v", cps[0])
	}
}

func TestTelecomsInvalidPhoneRecordsWarning(t *testing.T) {
	ctx := NewContext()
	seg := mustParseSegment(t, `PID|1||||||||||||^PRN^PH^^^^^^^^^X`)

	_ = Telecoms(ctx, seg, 13, true)
	if len(ctx.Warnings) != 1 || ctx.Warnings[0].Kind != InvalidPhone {
		t.Errorf("expected one InvalidPhone warning, got %+v", ctx.Warnings)
	}
}

func TestTelecomsDeduplicatesRepeatedValues(t *testing.T) {
	ctx := NewContext()
	seg := mustParseSegment(t, `PID|1||||||||||||^PRN^PH^^^^^^^^^0608987212~^PRN^PH^^^^^^^^^0608987212`)

	cps := Telecoms(ctx, seg, 13, true)
	if len(cps) != 1 {
		t.Errorf("expected duplicate repetition to be deduplicated, got %d entries", len(cps))
	}
}
