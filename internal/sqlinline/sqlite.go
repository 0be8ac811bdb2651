package sqlinline

// SQLite statements. Timestamps are unix nanoseconds supplied by the caller so
// ordering stays stable for records created within the same second.

const QSQLiteCreateDonationsTable = `--sql 65634a20-947a-4035-87be-9537b804dc18
create table if not exists donations (
    id          integer primary key autoincrement,
    full_name   text not null default '',
    amount      text not null default '',
    image_data  blob not null,
    status      text not null default 'pending' check (status in ('pending', 'confirmed')),
    created_at  integer not null,
    requeued_at integer
);
`

const QSQLiteCreateDonationsPendingIndex = `--sql 08b867b6-e2ee-4809-a488-12a63da08a1f
create index if not exists donations_status_created_idx on donations (status, created_at, id);
`

const QSQLiteCreateRolesTable = `--sql b03cd6a8-0549-4149-bc48-4778c4cbedea
create table if not exists roles (
    id             integer primary key check (id = 1),
    admin_session  text,
    editor_session text,
    created_at     integer not null default (unixepoch())
);
`

const QSQLiteSeedRolesRow = `--sql 8570e96a-4be3-4a8b-a2ad-d405448c73c2
insert or ignore into roles (id) values (1);
`

const QSQLiteInsertDonation = `--sql d72834d5-269e-494d-b308-f57091ca4362
insert into donations (full_name, amount, image_data, status, created_at)
values (?, ?, ?, 'pending', ?);
`

const QSQLiteGetDonation = `--sql 512af40f-1be5-49bf-aff7-3cbaed007480
select id, full_name, amount, image_data, status, created_at, requeued_at
from donations
where id = ?;
`

const QSQLiteListPendingDonations = `--sql 3cc4db14-29f9-4c99-8bb3-0895d97a81c4
select id, full_name, amount, status, created_at, requeued_at
from donations
where status = 'pending'
order by created_at asc, id asc;
`

const QSQLiteCountPendingDonations = `--sql d7e1d86d-7df8-43b8-976c-69dc47e204bf
select count(*)
from donations
where status = 'pending';
`

const QSQLiteNextPendingDonation = `--sql 96928cfd-f0bd-4808-a4c2-86fe1d9627ef
select id, full_name, amount, status, created_at, requeued_at
from donations
where status = 'pending'
order by coalesce(requeued_at, created_at) asc, id asc
limit 1;
`

const QSQLiteRequeueDonation = `--sql c6d09927-5a7d-42f1-9ea6-234b8bbd791d
update donations
set requeued_at = case when status = 'pending' then ? else requeued_at end
where id = ?;
`

const QSQLiteConfirmDonation = `--sql f3b5c72d-0dfa-401d-9464-ae03733d21c7
update donations
set full_name = ?, amount = ?, status = 'confirmed'
where id = ?;
`

const QSQLiteListConfirmedNewestFirst = `--sql 8ce0ceae-326a-4f9f-a3b6-c0991b5a1328
select id, full_name, amount, status, created_at, requeued_at
from donations
where status = 'confirmed'
order by created_at desc, id desc;
`

const QSQLiteListConfirmedOldestFirst = `--sql c772cf8b-45c9-43cb-ac80-a655ab7aa6d8
select id, full_name, amount, status, created_at, requeued_at
from donations
where status = 'confirmed'
order by created_at asc, id asc;
`

const QSQLiteDeleteAllDonations = `--sql ccce6837-abe0-4fb7-864f-a3689860867e
delete from donations;
`

const QSQLiteGetRoles = `--sql e60d7627-74ed-44fa-aa3b-3545e8dd52b4
select admin_session, editor_session
from roles
where id = 1;
`

const QSQLiteClaimAdminRole = `--sql aa7762da-c26e-4df3-99ba-0bcfde77e130
update roles
set admin_session = ?1
where id = 1 and admin_session is null;
`

const QSQLiteClaimEditorRole = `--sql e12d794b-2e59-404c-8069-c7de11280ba6
update roles
set editor_session = ?1
where id = 1
  and editor_session is null
  and admin_session is not null
  and admin_session <> ?1;
`

const QSQLiteClearRoles = `--sql 2e279f71-873a-464c-b5bc-4931043c0a16
update roles
set admin_session = null, editor_session = null
where id = 1;
`
