package model

import "testing"

func TestParseLocationNormalizesSpaces(t *testing.T) {
	cases := map[string]string{
		"Pune Baner":         LocationPuneBaner,
		"pune_baner":         LocationPuneBaner,
		"PUNE WADGAONSHERI":  LocationPuneWadgaonsheri,
		" Hyderabad ":        LocationHyderabad,
		"Pune_Wadgaonsheri":  LocationPuneWadgaonsheri,
	}
	for in, want := range cases {
		got, err := ParseLocation(in)
		if err != nil {
			t.Fatalf("ParseLocation(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseLocation(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseLocation("Mumbai"); err == nil {
		t.Fatal("unknown location accepted")
	}
}

func TestParseAvailabilityRejectsUnknown(t *testing.T) {
	got, err := ParseAvailability("maintenance")
	if err != nil || got != RoomMaintenance {
		t.Fatalf("ParseAvailability(maintenance) = %q, %v", got, err)
	}
	if _, err := ParseAvailability("Closed"); err == nil {
		t.Fatal("unknown availability accepted")
	}
}

func TestParseStatusCanonicalizes(t *testing.T) {
	got, err := ParseStatus(" Confirmed ")
	if err != nil || got != StatusConfirmed {
		t.Fatalf("ParseStatus(Confirmed) = %q, %v", got, err)
	}
	if _, err := ParseStatus("completed"); err == nil {
		t.Fatal("unknown status accepted")
	}
}
