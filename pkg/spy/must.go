package spy

// TestingT is the subset of testing.TB used by MustVerify.
type TestingT interface {
	Helper()
	Errorf(format string, args ...any)
	FailNow()
}

// MustVerify fails t with the full verification report unless the spy's
// plan verifies.
func MustVerify(t TestingT, s *Spy) {
	t.Helper()
	if err := s.Verify(); err != nil {
		t.Errorf("spy verification failed:\n%v", err)
		t.FailNow()
	}
}
