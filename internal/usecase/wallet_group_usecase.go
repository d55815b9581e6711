package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"foodcourt/internal/domain/model"
	repo "foodcourt/internal/repository"

	"github.com/shopspring/decimal"
)

// WalletGroupUsecase はウォレットグループの管理と一括入金を持つ。
// グループは電話番号でメンバーを束ね、入金は全員のウォレットへ同額で配る。
type WalletGroupUsecase struct {
	tx          repo.TransactionManager
	clock       Clock
	topUpWindow time.Duration
}

func NewWalletGroupUsecase(tx repo.TransactionManager, clock Clock, topUpWindow time.Duration) *WalletGroupUsecase {
	return &WalletGroupUsecase{
		tx:          tx,
		clock:       clock,
		topUpWindow: topUpWindow,
	}
}

type CreateGroupInput struct {
	GroupName    string
	BuildingID   string
	PhoneNumbers []string
}

type GroupMemberResponse struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
}

type GroupResponse struct {
	ID         string                `json:"id"`
	GroupName  string                `json:"group_name"`
	BuildingID string                `json:"building_id"`
	Members    []GroupMemberResponse `json:"members"`
}

// CreateGroup はグループを作る。1人でも未登録の電話番号があれば
// 何も作らずに失敗し、見つからなかった番号を返す。
func (u *WalletGroupUsecase) CreateGroup(ctx context.Context, in CreateGroupInput) (GroupResponse, error) {
	if in.GroupName == "" {
		return GroupResponse{}, NewHTTPError(http.StatusBadRequest, "group name is required")
	}
	if in.BuildingID == "" {
		return GroupResponse{}, NewHTTPError(http.StatusBadRequest, "building id is required")
	}
	if len(in.PhoneNumbers) == 0 {
		return GroupResponse{}, NewHTTPError(http.StatusBadRequest, "phone numbers are required")
	}

	var out GroupResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		users, missing, err := resolveMembersByPhone(ctx, r, in.PhoneNumbers)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			// 入力不備なので400。どの番号が引けなかったかは返す。
			return NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("users not found for phone numbers: %s", strings.Join(missing, ", ")))
		}

		group, err := r.WalletGroups().Create(ctx, model.WalletGroup{
			GroupName:  in.GroupName,
			BuildingID: in.BuildingID,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		members := make([]GroupMemberResponse, 0, len(users))
		for _, user := range users {
			if err := r.WalletGroups().AddMember(ctx, model.WalletGroupMember{
				GroupID:     group.ID,
				UserID:      user.ID,
				PhoneNumber: user.PhoneNumber,
				Email:       user.CompanyEmail,
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if err := ensureMemberWallet(ctx, r, user.ID, group.BuildingID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			members = append(members, toGroupMemberResponse(user))
		}

		out = GroupResponse{
			ID:         group.ID,
			GroupName:  group.GroupName,
			BuildingID: group.BuildingID,
			Members:    members,
		}
		return nil
	})

	if err != nil {
		return GroupResponse{}, err
	}
	return out, nil
}

// GetGroup はメンバー一覧付きでグループを返す。
func (u *WalletGroupUsecase) GetGroup(ctx context.Context, groupID string) (GroupResponse, error) {
	if groupID == "" {
		return GroupResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out GroupResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		group, members, err := loadGroup(ctx, r, groupID)
		if err != nil {
			return err
		}

		resp := GroupResponse{
			ID:         group.ID,
			GroupName:  group.GroupName,
			BuildingID: group.BuildingID,
			Members:    make([]GroupMemberResponse, 0, len(members)),
		}
		for _, m := range members {
			name := ""
			if user, err := r.Users().FindByID(ctx, m.UserID); err == nil {
				name = user.Name
			}
			resp.Members = append(resp.Members, GroupMemberResponse{
				UserID:      m.UserID,
				Name:        name,
				PhoneNumber: m.PhoneNumber,
				Email:       m.Email,
			})
		}

		out = resp
		return nil
	})

	if err != nil {
		return GroupResponse{}, err
	}
	return out, nil
}

// FundGroup は全メンバーのウォレットへ同額を入金する。1トランザクションで、
// 1人でも失敗したら全員分が巻き戻る。ロック順を揃えるためユーザーID順に処理する。
func (u *WalletGroupUsecase) FundGroup(ctx context.Context, groupID string, amount decimal.Decimal, retainable bool) ([]WalletSnapshot, error) {
	if groupID == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid amount")
	}

	var out []WalletSnapshot

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		group, members, err := loadGroup(ctx, r, groupID)
		if err != nil {
			return err
		}
		if len(members) == 0 {
			return NewHTTPError(http.StatusBadRequest, "wallet group has no members")
		}

		sort.Slice(members, func(i, j int) bool {
			return members[i].UserID < members[j].UserID
		})

		now := u.clock.Now()
		var expiry *time.Time
		if !retainable {
			t := now.Add(u.topUpWindow)
			expiry = &t
		}

		out = make([]WalletSnapshot, 0, len(members))
		for _, m := range members {
			wallet, err := creditWallet(ctx, r, now, m.UserID, amount, &group.BuildingID, retainable, expiry)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			if err := r.WalletTransactions().Create(ctx, model.WalletTransaction{
				WalletID:    wallet.ID,
				UserID:      m.UserID,
				Amount:      amount,
				Description: "group funding",
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			out = append(out, toWalletSnapshot(wallet))
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

// AddMember は電話番号でメンバーを追加する。ウォレットが無ければ残高ゼロで作る。
func (u *WalletGroupUsecase) AddMember(ctx context.Context, groupID string, phone string) (GroupResponse, error) {
	if groupID == "" {
		return GroupResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if phone == "" {
		return GroupResponse{}, NewHTTPError(http.StatusBadRequest, "phone number is required")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		group, err := r.WalletGroups().FindByID(ctx, groupID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "wallet group not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		exists, err := r.WalletGroups().MemberExistsByPhone(ctx, groupID, phone)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if exists {
			return NewHTTPError(http.StatusBadRequest, "user already in the wallet group")
		}

		user, err := r.Users().FindByPhoneNumber(ctx, phone)
		if err != nil {
			if errors.Is(err, repo.ErrUserNotFound) {
				return NewHTTPError(http.StatusNotFound, "user not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.WalletGroups().AddMember(ctx, model.WalletGroupMember{
			GroupID:     group.ID,
			UserID:      user.ID,
			PhoneNumber: user.PhoneNumber,
			Email:       user.CompanyEmail,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := ensureMemberWallet(ctx, r, user.ID, group.BuildingID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})

	if err != nil {
		return GroupResponse{}, err
	}
	return u.GetGroup(ctx, groupID)
}

// RemoveMember はメンバーを外す。ウォレットと残高はそのまま残る。
func (u *WalletGroupUsecase) RemoveMember(ctx context.Context, groupID string, phone string) (GroupResponse, error) {
	if groupID == "" {
		return GroupResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if phone == "" {
		return GroupResponse{}, NewHTTPError(http.StatusBadRequest, "phone number is required")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if _, err := r.WalletGroups().FindByID(ctx, groupID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "wallet group not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.WalletGroups().RemoveMemberByPhone(ctx, groupID, phone); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusBadRequest, "user not in the wallet group")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})

	if err != nil {
		return GroupResponse{}, err
	}
	return u.GetGroup(ctx, groupID)
}

// ListGroupWallets はメンバー全員のウォレットをユーザー情報付きで返す（配布画面用）。
func (u *WalletGroupUsecase) ListGroupWallets(ctx context.Context, groupID string) ([]WalletWithUser, error) {
	if groupID == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out []WalletWithUser

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, members, err := loadGroup(ctx, r, groupID)
		if err != nil {
			return err
		}

		userIDs := make([]string, 0, len(members))
		for _, m := range members {
			userIDs = append(userIDs, m.UserID)
		}

		wallets, err := r.Wallets().ListByUserIDs(ctx, userIDs)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = make([]WalletWithUser, 0, len(wallets))
		for _, w := range wallets {
			user, err := r.Users().FindByID(ctx, w.UserID)
			if err != nil {
				if errors.Is(err, repo.ErrUserNotFound) {
					continue
				}
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = append(out, WalletWithUser{
				WalletID:      w.ID,
				UserID:        w.UserID,
				UserName:      user.Name,
				PhoneNumber:   user.PhoneNumber,
				Email:         user.CompanyEmail,
				WalletAmount:  w.WalletAmount,
				BalanceAmount: w.BalanceAmount,
				ExpiryAt:      w.ExpiryAt,
				IsRetainable:  w.IsRetainable,
			})
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

// 電話番号をユーザーに解決する。見つからなかった番号も返す。
func resolveMembersByPhone(ctx context.Context, r repo.TxRepos, phones []string) ([]model.User, []string, error) {
	users, err := r.Users().ListByPhoneNumbers(ctx, phones)
	if err != nil {
		return nil, nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	byPhone := make(map[string]model.User, len(users))
	for _, u := range users {
		byPhone[u.PhoneNumber] = u
	}

	resolved := make([]model.User, 0, len(phones))
	var missing []string
	for _, phone := range phones {
		user, ok := byPhone[phone]
		if !ok {
			missing = append(missing, phone)
			continue
		}
		resolved = append(resolved, user)
	}
	return resolved, missing, nil
}

func loadGroup(ctx context.Context, r repo.TxRepos, groupID string) (model.WalletGroup, []model.WalletGroupMember, error) {
	group, err := r.WalletGroups().FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.WalletGroup{}, nil, NewHTTPError(http.StatusNotFound, "wallet group not found")
		}
		return model.WalletGroup{}, nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	members, err := r.WalletGroups().ListMembers(ctx, groupID)
	if err != nil {
		return model.WalletGroup{}, nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return group, members, nil
}

// メンバーのウォレットが無ければ残高ゼロで作っておく。一覧と入金の受け皿になる。
func ensureMemberWallet(ctx context.Context, r repo.TxRepos, userID string, buildingID string) error {
	_, err := r.Wallets().FindByUserID(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	_, err = r.Wallets().Create(ctx, model.Wallet{
		UserID:        userID,
		BuildingID:    &buildingID,
		WalletAmount:  decimal.Zero,
		BalanceAmount: decimal.Zero,
		IsRetainable:  false,
	})
	return err
}

func toGroupMemberResponse(user model.User) GroupMemberResponse {
	return GroupMemberResponse{
		UserID:      user.ID,
		Name:        user.Name,
		PhoneNumber: user.PhoneNumber,
		Email:       user.CompanyEmail,
	}
}
