package state

// Reduce - чистая функция перехода. Каждое действие, кроме ResetState,
// меняет только свои поля.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case SetLoading:
		s.IsLoading = a.Loading
	case SetInitializing:
		s.IsInitializing = a.Initializing
	case SetAuthenticated:
		s.IsAuthenticated = a.Authenticated
	case SetUserData:
		return applyUserData(s, a)
	case SetError:
		s.Error = a.Message
		s.IsLoading = false
	case SetOffline:
		s.IsOffline = a.Offline
	case UpdateJobs:
		if a.MyJobs != nil {
			s.MyJobs = *a.MyJobs
		}
		if a.AllJobs != nil {
			s.AllJobs = *a.AllJobs
		}
	case UpdateJobInteractions:
		if a.AppliedJobIDs != nil {
			s.AppliedJobIDs = *a.AppliedJobIDs
		}
		if a.SavedJobIDs != nil {
			s.SavedJobIDs = *a.SavedJobIDs
		}
	case SetConversations:
		s.Conversations = a.Conversations
	case ResetState:
		next := Initial()
		next.IsInitializing = false
		next.IsLoading = false
		return next
	}
	return s
}

func applyUserData(s State, a SetUserData) State {
	if a.UserID != nil {
		s.UserID = *a.UserID
	}
	if a.UserRole != nil {
		s.UserRole = *a.UserRole
	}
	if a.UserName != nil {
		s.UserName = *a.UserName
	}
	if a.UserEmail != nil {
		s.UserEmail = *a.UserEmail
	}
	if a.UserPhone != nil {
		s.UserPhone = *a.UserPhone
	}
	if a.IsPremium != nil {
		s.IsPremium = *a.IsPremium
	}
	if a.PharmacyAddress != nil {
		s.PharmacyAddress = *a.PharmacyAddress
	}
	if a.IsLicenseVerified != nil {
		s.IsLicenseVerified = *a.IsLicenseVerified
	}
	if a.IsContactVerified != nil {
		s.IsContactVerified = *a.IsContactVerified
	}
	if a.UploadedDocuments != nil {
		s.UploadedDocuments = *a.UploadedDocuments
	}
	if a.ClearJobToReview {
		s.JobToReviewID = nil
	}
	if a.JobToReviewID != nil {
		id := *a.JobToReviewID
		s.JobToReviewID = &id
	}
	if a.DashboardStats != nil {
		stats := *a.DashboardStats
		s.DashboardStats = &stats
	}
	return s
}
